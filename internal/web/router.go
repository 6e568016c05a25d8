// Package web is the HTTP surface of the tracker: a JSON API behind an
// access-code login.
package web

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter wires all routes. Everything except login requires a bearer
// token.
func SetupRouter(auth *AuthController, tasks *TaskController, notes *NoteController, settings *SettingsController) *gin.Engine {
	r := gin.Default()

	r.POST("/api/login", auth.Login)

	api := r.Group("/api", AuthMiddleware(auth.Secret))
	{
		api.POST("/access-code", auth.ChangeAccessCode)

		api.GET("/tasks", tasks.Board)
		api.POST("/tasks", tasks.CreateTask)
		api.PUT("/tasks/:id", tasks.UpdateTask)
		api.DELETE("/tasks/:id", tasks.DeleteTask)
		api.POST("/tasks/:id/complete", tasks.CompleteTask)

		api.POST("/tasks/:id/subtasks", tasks.AddSubtask)
		api.PUT("/tasks/:id/subtasks/:subtaskID", tasks.UpdateSubtask)
		api.POST("/tasks/:id/subtasks/:subtaskID/toggle", tasks.ToggleSubtask)
		api.DELETE("/tasks/:id/subtasks/:subtaskID", tasks.DeleteSubtask)

		api.GET("/history", tasks.History)

		api.GET("/notes", notes.List)
		api.POST("/notes", notes.Create)
		api.PUT("/notes/:id", notes.Update)
		api.DELETE("/notes/:id", notes.Delete)
		api.POST("/notes/:id/move", notes.Move)

		api.GET("/settings", settings.Get)
		api.PUT("/settings/hourly-report", settings.SetHourlyReport)
	}

	return r
}
