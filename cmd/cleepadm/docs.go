package main

// General API documentation for swaggo. Run `swag init -g cmd/cleepadm/docs.go` to generate docs.
//
// @title           cleepadm API
// @version         1.0
// @description     HTTP API of the Cleep device admin core: module and driver lifecycles,
// @description     rendering suppression, restart and reboot advisories.
//
// @contact.name   cleepadm maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
