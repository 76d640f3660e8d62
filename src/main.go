package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"tembea/src/boot"
	"tembea/src/db"
	"tembea/src/middlewares"
	"tembea/src/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var apiPrefix string = "/api/v1"

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func kenyanPhoneValidatorFunc(fl validator.FieldLevel) bool {
	return utils.ValidKenyanPhone(utils.NormalizePhone(fl.Field().String()))
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}

	boot.InitDb()
	boot.InitScheduler()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("kenyanphone", kenyanPhoneValidatorFunc)
	}

	router := setupRouter()
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "DELETE")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Content-Type", "Authorization")
		cc.AllowOrigins = []string{os.Getenv("CLIENT_URL")}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	public := apiv1Group(router)
	tripHandlers(public)
	productHandlers(public)
	reviewPublicHandlers(public)
	authHandlers(public)

	// Provider callbacks authenticate by correlation, not by bearer token.
	mpesaWebhookRoute(router)
	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		bookingHandlers(authorized)
		orderHandlers(authorized)
		paymentHandlers(authorized)
		profileHandlers(authorized)
		reviewHandlers(authorized)
	}

	admin := router.Group(apiPrefix)
	admin.Use(middlewares.AuthMiddleware, middlewares.AdminMiddleware)
	{
		adminHandlers(admin)
		tripAdminHandlers(admin)
		productAdminHandlers(admin)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	boot.StopScheduler()
	db.Close()

	log.Println("Server exiting")
}
