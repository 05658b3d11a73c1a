package mockserver

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gavv/httpexpect/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-jwt-secret"

func newTestServer(t *testing.T, cfg Config, opts ...Option) (*Server, *httpexpect.Expect) {
	t.Helper()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = testSecret
	}
	opts = append([]Option{WithPasswordCost(bcrypt.MinCost)}, opts...)

	srv, err := New(cfg, zerolog.Nop(), opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return srv, httpexpect.Default(t, ts.URL)
}

type fakeUser struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirmPassword"`
	SecretKey       *string `json:"secretKey,omitempty"`
}

func randomUser() fakeUser {
	pass := gofakeit.Password(true, true, true, false, false, 12)
	return fakeUser{
		Username:        gofakeit.Username(),
		Email:           gofakeit.Email(),
		Password:        pass,
		ConfirmPassword: pass,
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrMissingSecret)

	srv, err := New(Config{JWTSecret: "x"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, srv.cfg.TokenTTL)
}

func TestSearch(t *testing.T) {
	_, e := newTestServer(t, Config{})

	t.Run("matches keep catalog order", func(t *testing.T) {
		arr := e.GET("/api/film/search/{q}", "matrix").
			Expect().
			Status(http.StatusOK).
			JSON().Array()

		arr.Length().IsEqual(2)
		arr.Value(0).Object().Value("id").String().IsEqual("1")
		arr.Value(1).Object().Value("id").String().IsEqual("2")
	})

	t.Run("case and accents are folded", func(t *testing.T) {
		arr := e.GET("/api/film/search/{q}", "AMELIE").
			Expect().
			Status(http.StatusOK).
			JSON().Array()

		arr.Length().IsEqual(1)
		arr.Value(0).Object().Value("title").String().IsEqual("Amélie")
	})

	t.Run("every word must match", func(t *testing.T) {
		e.GET("/api/film/search/{q}", "matrix reloaded").
			Expect().
			Status(http.StatusOK).
			JSON().Array().Length().IsEqual(1)
	})

	t.Run("no match is an empty array", func(t *testing.T) {
		e.GET("/api/film/search/{q}", "zzzzzz").
			Expect().
			Status(http.StatusOK).
			JSON().Array().IsEmpty()
	})
}

func TestFilmDetails(t *testing.T) {
	_, e := newTestServer(t, Config{})

	e.GET("/api/film/details").
		Expect().
		Status(http.StatusOK).
		JSON().Array().Length().IsEqual(len(DefaultCatalog()))

	obj := e.GET("/api/film/{id}/details", "3").
		Expect().
		Status(http.StatusOK).
		JSON().Object()
	obj.Value("title").String().IsEqual("Dark")
	obj.Value("isMovie").Boolean().IsFalse()
	obj.Value("episodes").Array().Length().IsEqual(3)

	e.GET("/api/film/{id}/details", "999").
		Expect().
		Status(http.StatusNotFound).
		Body().IsEqual(msgFilmNotFound)
}

func TestRegisterAndLogin(t *testing.T) {
	_, e := newTestServer(t, Config{TokenTTL: time.Hour})
	user := randomUser()

	reg := e.POST("/register").
		WithJSON(user).
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	reg.Keys().ContainsOnly("id", "username", "email", "jwt")
	reg.Value("id").Number().IsEqual(1)
	reg.Value("username").String().IsEqual(user.Username)
	reg.Value("email").String().IsEqual(user.Email)

	login := e.POST("/login").
		WithJSON(map[string]string{"email": user.Email, "password": user.Password}).
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	login.Keys().ContainsOnly("id", "username", "jwtToken")
	login.Value("id").Number().IsEqual(1)

	tokenString := login.Value("jwtToken").String().Raw()

	claims := jwt.MapClaims{}
	token, err := jwt.NewParser().ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, "1", claims["sub"])
	assert.Equal(t, user.Username, claims["username"])
	assert.Equal(t, roleUser, claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func TestLogin_Rejected(t *testing.T) {
	_, e := newTestServer(t, Config{})
	user := randomUser()

	e.POST("/register").WithJSON(user).Expect().Status(http.StatusOK)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{name: "wrong password", email: user.Email, pass: user.Password + "x"},
		{name: "unknown email", email: gofakeit.Email(), pass: user.Password},
		{name: "empty password", email: user.Email, pass: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.POST("/login").
				WithJSON(map[string]string{"email": tt.email, "password": tt.pass}).
				Expect().
				Status(http.StatusUnauthorized).
				Body().IsEqual(msgInvalidCredentials)
		})
	}

	e.POST("/login").
		WithText("{not json").
		Expect().
		Status(http.StatusBadRequest)
}

func TestRegister_Conflicts(t *testing.T) {
	srv, e := newTestServer(t, Config{})
	user := randomUser()

	e.POST("/register").WithJSON(user).Expect().Status(http.StatusOK)

	sameEmail := randomUser()
	sameEmail.Email = user.Email
	e.POST("/register").
		WithJSON(sameEmail).
		Expect().
		Status(http.StatusConflict).
		Body().IsEqual("Email already exists")

	sameName := randomUser()
	sameName.Username = user.Username
	e.POST("/register").
		WithJSON(sameName).
		Expect().
		Status(http.StatusConflict).
		Body().IsEqual("Username already exists")

	assert.Equal(t, 1, srv.users.count())
}

func TestRegister_Validation(t *testing.T) {
	_, e := newTestServer(t, Config{})

	tests := []struct {
		name   string
		mutate func(u *fakeUser)
		want   string
	}{
		{
			name:   "missing username",
			mutate: func(u *fakeUser) { u.Username = "" },
			want:   "username is required",
		},
		{
			name:   "bad email",
			mutate: func(u *fakeUser) { u.Email = "not-an-email" },
			want:   "email must be a valid email",
		},
		{
			name:   "short password",
			mutate: func(u *fakeUser) { u.Password, u.ConfirmPassword = "abc", "abc" },
			want:   "password must be at least 6 characters",
		},
		{
			name:   "mismatched confirmation",
			mutate: func(u *fakeUser) { u.ConfirmPassword = u.Password + "!" },
			want:   "confirmpassword must match password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := randomUser()
			tt.mutate(&u)

			e.POST("/register").
				WithJSON(u).
				Expect().
				Status(http.StatusBadRequest).
				Body().Contains(tt.want)
		})
	}
}

func TestRegister_Admin(t *testing.T) {
	_, e := newTestServer(t, Config{AdminSecret: "let-me-in"})

	wrong := "guess"
	u := randomUser()
	u.SecretKey = &wrong
	e.POST("/register").
		WithJSON(u).
		Expect().
		Status(http.StatusForbidden).
		Body().IsEqual(msgInvalidSecretKey)

	right := "let-me-in"
	u.SecretKey = &right
	tokenString := e.POST("/register").
		WithJSON(u).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("jwt").String().Raw()

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	require.NoError(t, err)
	assert.Equal(t, roleAdmin, claims["role"])
}

func TestRegister_AdminDisabled(t *testing.T) {
	_, e := newTestServer(t, Config{})

	key := ""
	u := randomUser()
	u.SecretKey = &key

	e.POST("/register").
		WithJSON(u).
		Expect().
		Status(http.StatusForbidden)
}

func TestHealthAndMetrics(t *testing.T) {
	_, e := newTestServer(t, Config{})

	e.GET("/healthz").Expect().Status(http.StatusOK).Body().IsEqual("ok")
	e.GET("/api/film/search/{q}", "dark").Expect().Status(http.StatusOK)

	e.GET("/metrics").
		Expect().
		Status(http.StatusOK).
		Body().
		Contains(`filmforum_mockserver_http_requests_total{code="200",method="GET",route="/api/film/search/{query}"} 1`)
}

func TestCORS(t *testing.T) {
	_, e := newTestServer(t, Config{AllowedOrigins: []string{"http://app.example"}})

	e.GET("/healthz").
		WithHeader("Origin", "http://app.example").
		Expect().
		Header("Access-Control-Allow-Origin").IsEqual("http://app.example")

	e.GET("/healthz").
		WithHeader("Origin", "http://evil.example").
		Expect().
		Header("Access-Control-Allow-Origin").IsEmpty()
}

func TestIssueToken_UsesClock(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	srv, e := newTestServer(t, Config{TokenTTL: 30 * time.Minute}, WithClock(func() time.Time { return issued }))

	tokenString := e.POST("/register").
		WithJSON(randomUser()).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("jwt").String().Raw()

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	require.NoError(t, err)

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, issued.Add(srv.cfg.TokenTTL).Unix(), exp.Unix())
}

func TestStatusRecorder_Flushes(t *testing.T) {
	rw := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}

	rec.WriteHeader(http.StatusAccepted)
	require.NoError(t, http.NewResponseController(rec).Flush())

	assert.Equal(t, http.StatusAccepted, rec.status)
	assert.True(t, rw.Flushed)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv, err := New(Config{JWTSecret: testSecret}, zerolog.Nop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
