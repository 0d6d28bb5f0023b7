// Package response builds handler.Response values: JSON and plain text
// bodies, structured HTTPError values, and websocket upgrades.
//
// Handlers return errors through Error; the router hands them to an error
// handler such as JSONErrorHandler, which renders HTTPError values as
// {"code": ..., "message": ...} with the matching status. Errors that are not
// HTTPError but implement StatusCode() int are mapped to the predefined error
// for that status; anything else becomes a bare 500 without its cause.
package response
