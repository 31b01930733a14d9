package docs

import (
	"embed"
	"net/http"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerFS embed.FS

// SwaggerInfo leaves Host empty so the UI targets whichever address served it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Service Node Reachability API",
	Description:      "Inbound probe endpoints and the local reachability ledger",
	InfoInstanceName: "swagger",
}

func init() {
	data, err := swaggerFS.ReadFile("swagger.json")
	if err != nil {
		panic("failed to load swagger.json: " + err.Error())
	}
	SwaggerInfo.SwaggerTemplate = string(data)
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

func JSONHandler(w http.ResponseWriter, _ *http.Request) {
	data, err := swaggerFS.ReadFile("swagger.json")
	if err != nil {
		http.Error(w, "swagger spec not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
