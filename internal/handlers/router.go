package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts the task, person and health routes on r.
func Register(r chi.Router, tasks *TaskHandler, persons *PersonHandler) {
	r.Get("/health", tasks.HealthCheck)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", tasks.ListTasks)
		r.Post("/", tasks.CreateTask)
		r.Get("/{id}", tasks.GetTaskByID)
		r.Put("/{id}", tasks.UpdateTask)
		r.Delete("/{id}", tasks.DeleteTask)
	})

	r.Route("/persons", func(r chi.Router) {
		r.Get("/", persons.ListPersons)
		r.Post("/", persons.CreatePerson)
		r.Get("/{id}", persons.GetPerson)
	})
}
