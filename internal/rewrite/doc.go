// Package rewrite implements the server-side rewrite table: an ordered list
// of rules mapping inbound path patterns to upstream destination URLs.
//
// Patterns use the path syntax of the hosting framework the table came from:
//
//	/api/:path*      zero or more trailing segments
//	/files/:path+    one or more trailing segments
//	/users/:id       exactly one segment
//	/docs/:page?     zero or one segment
//
// Parameters captured by the source are substituted into the destination, so
// "/api/:path*" -> "http://127.0.0.1:8000/:path*" forwards /api/models/x to
// http://127.0.0.1:8000/models/x with the suffix preserved.
//
// The table is read once at startup and compiled into a Router. The Router
// only resolves paths; forwarding is done by the handler package.
package rewrite
