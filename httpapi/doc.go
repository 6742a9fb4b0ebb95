// Package httpapi serves the q63 Engine as the JSON API the tracker page
// calls: account registration and login, password reset, daily progress,
// and the admin email export.
//
// Every response carries permissive CORS headers and OPTIONS requests are
// answered with 204. Failures are rendered as {"error": "<message>"} with the
// status of the error's [q63.Kind]; infrastructure failures are logged and
// answered with the route's generic message.
package httpapi
