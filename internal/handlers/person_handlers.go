package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/llalegg/rd-tasks-sub000/internal/handlers/dto"
	"github.com/llalegg/rd-tasks-sub000/internal/logger"
	"github.com/llalegg/rd-tasks-sub000/internal/models/person"
	"github.com/llalegg/rd-tasks-sub000/internal/service"
)

type PersonHandler struct {
	PersonService PersonService
}

func NewPersonHandler(personService PersonService) *PersonHandler {
	return &PersonHandler{PersonService: personService}
}

// ListPersons supports ?role= to narrow the list, e.g. role=athlete for the
// related-athletes picker.
func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	role := person.Role(r.URL.Query().Get("role"))
	persons, err := h.PersonService.ListPersons(r.Context(), role)
	if err != nil {
		handleServiceError(w, r, err, "list_persons")
		return
	}

	responseWithData(w, http.StatusOK, dto.FromPersonList(persons))
}

func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.PersonService.GetPerson(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_person")
		return
	}

	responseWithData(w, http.StatusOK, dto.FromPerson(found))
}

func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, service.CodeValidation, "Content-Type must be application/json")
		return
	}

	var request dto.CreatePersonRequest
	if err := decodeJSON(w, r, &request); err != nil {
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
		return
	}

	created, err := h.PersonService.CreatePerson(r.Context(), service.CreatePersonInput{
		Name:     request.Name,
		Role:     person.Role(request.Role),
		Sport:    request.Sport,
		Team:     request.Team,
		Position: request.Position,
	})
	if err != nil {
		handleServiceError(w, r, err, "create_person")
		return
	}

	logger.Info("HTTP_OUT: person created",
		zap.String("person_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromPerson(created))
}
