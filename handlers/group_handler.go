package handlers

import (
	"net/http"

	"github.com/Dosada05/contest-system/middleware"
	"github.com/Dosada05/contest-system/services"
)

type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(gs services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: gs}
}

// Create godoc
// @Summary Зарегистрировать команду
// @Tags groups
// @Description Капитаном становится текущий аккаунт.
// @Accept json
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param body body services.CreateGroupInput true "Название команды"
// @Success 201 {object} map[string]interface{} "Команда создана"
// @Failure 404 {object} map[string]string "Конкурс не найден"
// @Failure 409 {object} map[string]string "Имя занято"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /contests/{contestID}/groups [post]
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a group")
		return
	}

	var input services.CreateGroupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.ContestID = contestID

	group, err := h.groupService.Create(r.Context(), account, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByContest godoc
// @Summary Команды конкурса
// @Tags groups
// @Produce json
// @Param contestID path int true "Contest ID"
// @Success 200 {object} map[string]interface{} "Список команд"
// @Failure 404 {object} map[string]string "Конкурс не найден"
// @Router /contests/{contestID}/groups [get]
func (h *GroupHandler) ListByContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.groupService.ListByContest(r.Context(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
