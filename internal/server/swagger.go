package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title VeriJob API
// @version 0.1
// @description Interactive documentation for the VeriJob fraud-analysis API surface.
// @contact.name VeriJob Maintainers
// @contact.url https://github.com/verijob/verijob
// @BasePath /
