package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-pet-photo-service/http/controller"
	middlewares "github.com/tnqbao/gau-pet-photo-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl.Config)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	r.GET("/health", ctrl.HealthCheck)

	photoRoutes := r.Group("/api/v1/photos")
	{
		// galleries are public
		photoRoutes.GET("/", ctrl.ListPhotos)
		photoRoutes.GET("/:id", ctrl.GetPhoto)
		photoRoutes.GET("/:id/content", ctrl.GetPhotoContent)
		photoRoutes.GET("/object/:object_name", ctrl.GetPhotoByObjectName)

		photoRoutes.POST("/", middles.AuthMiddleware, ctrl.UploadPhoto)
		photoRoutes.DELETE("/:id", middles.AuthMiddleware, ctrl.DeletePhoto)

		// called by the user, shelter and animal services when an owner goes away
		photoRoutes.DELETE("/owner/:entity_type/:entity_id", middles.ServiceAuthMiddleware, ctrl.DeleteOwnerPhotos)
	}
	return r
}
