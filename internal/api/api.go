package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/sliink/flownode/internal/api/docs"
	"github.com/sliink/flownode/internal/host"
)

// API is the REST inspection surface over a registry of driven nodes
type API struct {
	registry *host.DriverRegistry
	router   *gin.Engine
	server   *http.Server
	port     int
	host     string
}

// NewAPI creates a new API instance
// @title           Flownode Inspection API
// @version         1.0
// @description     Read-only API for inspecting driven dataflow nodes
// @host      localhost:8080
// @BasePath  /
func NewAPI(registry *host.DriverRegistry, port int, hostname string) *API {
	docs.SwaggerInfo.Title = "Flownode Inspection API"
	docs.SwaggerInfo.Description = "Read-only API for inspecting driven dataflow nodes"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", hostname, port)
	docs.SwaggerInfo.BasePath = ""
	docs.SwaggerInfo.Schemes = []string{"http"}

	router := gin.Default()

	a := &API{
		registry: registry,
		router:   router,
		port:     port,
		host:     hostname,
	}

	a.setupRoutes()

	return a
}

// setupRoutes configures all the API routes
func (a *API) setupRoutes() {
	a.router.GET("/health", a.healthCheck)

	nodes := a.router.Group("/nodes")
	{
		nodes.GET("", a.getNodes)
		nodes.GET("/:name", a.getNode)
		nodes.GET("/:name/events", a.getNodeEvents)
		nodes.GET("/:name/outputs", a.getNodeOutputs)
	}

	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Router exposes the gin engine, mainly for tests
func (a *API) Router() *gin.Engine {
	return a.router
}

// Start starts the API server
func (a *API) Start() error {
	addr := fmt.Sprintf("%s:%d", a.host, a.port)
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.router,
	}

	return a.server.ListenAndServe()
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// healthCheck handles GET /health
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (a *API) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}

// getNodes handles GET /nodes
// @Summary      List nodes
// @Description  Get a report for every registered node
// @Tags         nodes
// @Produce      json
// @Success      200  {array}  host.NodeReport
// @Router       /nodes [get]
func (a *API) getNodes(c *gin.Context) {
	c.JSON(http.StatusOK, a.registry.Reports())
}

// getNode handles GET /nodes/:name
// @Summary      Get node report
// @Description  Get the lifecycle state of a specific node
// @Tags         nodes
// @Produce      json
// @Param        name    path    string  true  "Node name"
// @Success      200  {object}  host.NodeReport
// @Failure      404  {object}  map[string]string
// @Router       /nodes/{name} [get]
func (a *API) getNode(c *gin.Context) {
	driver, exists := a.registry.Get(c.Param("name"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
		return
	}

	c.JSON(http.StatusOK, driver.Report())
}

// getNodeEvents handles GET /nodes/:name/events
// @Summary      Get node events
// @Description  Get the recent lifecycle events of a specific node
// @Tags         nodes
// @Produce      json
// @Param        name    path    string  true  "Node name"
// @Success      200  {array}  host.Event
// @Failure      404  {object}  map[string]string
// @Router       /nodes/{name}/events [get]
func (a *API) getNodeEvents(c *gin.Context) {
	driver, exists := a.registry.Get(c.Param("name"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
		return
	}

	c.JSON(http.StatusOK, driver.RecentEvents())
}

// getNodeOutputs handles GET /nodes/:name/outputs
// @Summary      Get node outputs
// @Description  Get the schema and records a node pushed downstream
// @Tags         nodes
// @Produce      json
// @Param        name    path    string  true  "Node name"
// @Success      200  {object}  map[string]host.OutputCapture
// @Failure      404  {object}  map[string]string
// @Router       /nodes/{name}/outputs [get]
func (a *API) getNodeOutputs(c *gin.Context) {
	driver, exists := a.registry.Get(c.Param("name"))
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Node not found"})
		return
	}

	c.JSON(http.StatusOK, driver.Sink().Captured())
}
