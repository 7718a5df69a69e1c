package web

//go:generate swag init -g internal/web/swagger.go -o internal/web/docs

// @title ShipCheck web API
// @version 0.1
// @description JSON surfaces of the ShipCheck report viewer: derived report views and health.
// @contact.name ShipCheck Maintainers
// @contact.url https://github.com/AhmedKamal-41/ShipCheck-repo-analyzer
// @BasePath /
