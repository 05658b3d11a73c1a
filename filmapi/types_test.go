package filmapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthResult_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AuthResult
		wantErr bool
	}{
		{
			name:  "login shape",
			input: `{"id":1,"username":"neo","jwtToken":"a.b.c"}`,
			want:  AuthResult{ID: 1, Username: "neo", Token: "a.b.c"},
		},
		{
			name:  "register shape",
			input: `{"id":2,"username":"neo","email":"neo@example.com","jwt":"a.b.c"}`,
			want:  AuthResult{ID: 2, Username: "neo", Email: "neo@example.com", Token: "a.b.c"},
		},
		{
			name:  "jwtToken wins over jwt",
			input: `{"id":3,"username":"neo","jwtToken":"first","jwt":"second"}`,
			want:  AuthResult{ID: 3, Username: "neo", Token: "first"},
		},
		{name: "empty object", input: `{}`, wantErr: true},
		{name: "missing token", input: `{"id":1,"username":"neo"}`, wantErr: true},
		{name: "missing id", input: `{"username":"neo","jwt":"t"}`, wantErr: true},
		{name: "string id", input: `{"id":"1","username":"neo","jwt":"t"}`, wantErr: true},
		{name: "plain text", input: `Invalid credentials`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got AuthResult
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthResult_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(AuthResult{ID: 5, Username: "neo", Token: "tok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"username":"neo","jwtToken":"tok"}`, string(data))
}

func TestAuthResult_Claims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "42",
		"username": "neo",
		"role":     "admin",
		"exp":      exp.Unix(),
	})
	signed, err := token.SignedString([]byte("any-secret"))
	require.NoError(t, err)

	result := AuthResult{ID: 42, Username: "neo", Token: signed}
	claims, err := result.Claims()
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "neo", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, exp.Equal(claims.ExpiresAt))
	assert.False(t, claims.Expired())

	opaque := AuthResult{Token: "not-a-jwt"}
	_, err = opaque.Claims()
	assert.Error(t, err)
}

func TestUser_SecretKeyOmitted(t *testing.T) {
	data, err := json.Marshal(NewUser("neo", "neo@example.com", "pw", "pw"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secretKey")
	assert.NotContains(t, string(data), "null")

	admin := NewAdminUser("neo", "neo@example.com", "pw", "pw", "")
	assert.True(t, admin.IsAdmin())
	data, err = json.Marshal(admin)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"secretKey":""`)
}

func TestFilmHelpers(t *testing.T) {
	film := Film{
		Episodes: []Episode{
			{SeasonNumber: 1, EpisodeNumber: 1, Length: 45, Year: 2008},
			{SeasonNumber: 1, EpisodeNumber: 2, Length: 47, Year: 2008},
			{SeasonNumber: 2, EpisodeNumber: 1, Length: 50, Year: 2009},
		},
	}

	assert.Equal(t, 2008, film.Year())
	assert.Equal(t, 142, film.Length())
	assert.Equal(t, []int{1, 2}, film.Seasons())

	movie := Film{IsMovie: true}
	assert.Zero(t, movie.Year())
	assert.Zero(t, movie.Length())
	assert.Empty(t, movie.Seasons())
}

func TestFilm_EpisodesOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(Film{ID: "x", Title: "Solaris", IsMovie: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","title":"Solaris","description":"","isMovie":true}`, string(data))
}
