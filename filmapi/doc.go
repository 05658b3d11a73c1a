// Package filmapi provides a client for the FilmForum film API.
//
// The API serves a film catalog and account endpoints over HTTP/JSON. This
// package builds the requests, decodes the responses and classifies every
// failure into a small, stable set of error types.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := filmapi.NewClient(filmapi.DefaultBaseURL, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	films, _ := client.Search(ctx, "star wars")
//
//	result, err := client.Login(ctx, "user@example.com", "secret")
//	switch {
//	case filmapi.IsConnectionError(err):
//		// server unreachable
//	case filmapi.IsCredentialsError(err):
//		// show err.Error(), the text the server sent
//	}
//
// # Error Handling
//
// Search, ListFilms and GetFilm never fail: transport and parse problems are
// reported as an empty result. Install WithSearchErrorHook or WithObserver
// to see them.
//
// Login and Register return an AuthError:
//
//   - *ConnectionError: the request was not sent or the body not read
//   - *CredentialsError: the body is not an auth result; Body holds it verbatim
//   - ErrEmailExists, ErrUsernameExists: registration conflicts, matched on
//     the exact response text before JSON decoding
//
// No call is retried and the client keeps no session between calls.
package filmapi
