package testutil

// MoviesAPI is a small two-file definition with one service, one
// internal-only endpoint and an error. It is shared by resolver, converter
// and compiler tests.
func MoviesAPI() map[string]string {
	return map[string]string{
		"api.yml": `name: movies
audiences: [public, internal]
errors:
  - commons.ServerError
error-discrimination:
  strategy: status-code
auth: bearer
auth-schemes:
  bearer:
    scheme: bearer
`,
		"commons.yml": `types:
  Money:
    properties:
      amount: double
      currency: optional<string>
    examples:
      - name: ten
        value:
          amount: 10
errors:
  ServerError:
    status-code: 500
`,
		"imdb.yml": `imports:
  commons: commons.yml
types:
  MovieId:
    type: string
    examples:
      - value: tt0111161
  Movie:
    properties:
      id: MovieId
      title: string
      budget: commons.Money
  CreateMovieRequest:
    properties:
      title: string
errors:
  NotFoundError:
    status-code: 404
    type: MovieId
service:
  auth: true
  base-path: /movies
  endpoints:
    getMovie:
      method: GET
      path: /{movieId}
      path-parameters:
        movieId: MovieId
      response: Movie
      errors: [NotFoundError]
    createMovie:
      method: POST
      path: ""
      audiences: [internal]
      request: CreateMovieRequest
      response: MovieId
`,
	}
}
