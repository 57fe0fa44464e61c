package main

// General API documentation for swaggo. Build with -tags=swagger to serve it.
//
// @title           promptd API
// @version         1.0
// @description     HTTP API for streaming local LLM text generation.
//
// @contact.name   promptd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
