// Package api exposes a repository.Repository over HTTP.
//
// Routes, relative to the configured base path (default /api/sample):
//
//	GET    {base}                      list, ?skip= / ?$skip= and ?take= / ?$top=
//	GET    {base}/{key}                read; ETag header, 304 on If-None-Match
//	POST   {base}                      create; 201 with Location and ETag
//	PUT    {base}/{key}                replace; honours If-Match
//	PUT    {base}/addorupdate/{key}    upsert; 201 when created, honours If-Match
//	DELETE {base}/{key}                delete; honours If-Match, "all" reseeds
//
// Bodies may be JSON or XML, selected by Content-Type, and responses follow
// the Accept header. Errors are JSON envelopes produced by
// repository.ToErrorResponse.
package api
