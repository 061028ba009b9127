package handlers

import (
	"fmt"
	"net/http"

	"github.com/Dosada05/contest-system/middleware"
	"github.com/Dosada05/contest-system/models"
	"github.com/Dosada05/contest-system/services"
)

type ContestHandler struct {
	contestService services.ContestService
}

func NewContestHandler(cs services.ContestService) *ContestHandler {
	return &ContestHandler{contestService: cs}
}

type updateContestStatusRequest struct {
	Status models.ContestStatus `json:"status"`
}

// Create godoc
// @Summary Создать конкурс
// @Tags contests
// @Accept json
// @Produce json
// @Param body body services.CreateContestInput true "Данные конкурса"
// @Success 201 {object} map[string]interface{} "Конкурс создан"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /contests [post]
func (h *ContestHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a contest")
		return
	}

	var input services.CreateContestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contest, err := h.contestService.Create(r.Context(), account, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/v1/contests/%d", contest.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"contest": contest}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID godoc
// @Summary Получить конкурс
// @Tags contests
// @Produce json
// @Param contestID path int true "Contest ID"
// @Success 200 {object} map[string]interface{} "Конкурс с этапами и командами"
// @Failure 404 {object} map[string]string "Конкурс не найден"
// @Router /contests/{contestID} [get]
func (h *ContestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contest, err := h.contestService.GetByID(r.Context(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contest": contest}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatus godoc
// @Summary Изменить статус конкурса
// @Tags contests
// @Description FINISH открывает конкурс для последовательного добавления этапов.
// @Accept json
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param body body updateContestStatusRequest true "Новый статус"
// @Success 200 {object} map[string]interface{} "Статус обновлен"
// @Failure 400 {object} map[string]string "Недопустимый переход"
// @Failure 403 {object} map[string]string "Не создатель конкурса"
// @Security BearerAuth
// @Router /contests/{contestID}/status [patch]
func (h *ContestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update a contest")
		return
	}

	var input updateContestStatusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contest, err := h.contestService.UpdateStatus(r.Context(), account, contestID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contest": contest}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить конкурс
// @Tags contests
// @Param contestID path int true "Contest ID"
// @Success 204 "Удален"
// @Failure 403 {object} map[string]string "Не создатель конкурса"
// @Failure 404 {object} map[string]string "Конкурс не найден"
// @Security BearerAuth
// @Router /contests/{contestID} [delete]
func (h *ContestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete a contest")
		return
	}

	if err := h.contestService.Delete(r.Context(), account, contestID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
