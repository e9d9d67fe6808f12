package main

// General API documentation for swaggo. Run `swag init -g cmd/hfserve/docs.go` to regenerate docs.
//
// @title           hfserve API
// @version         1.0
// @description     HTTP API for text generation backed by vLLM or text-generation-inference.
//
// @contact.name   hfserve maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
