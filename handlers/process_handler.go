package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/contest-system/middleware"
	"github.com/Dosada05/contest-system/services"
)

const maxAttachmentSize = 32 << 20

type ProcessHandler struct {
	processService services.ProcessService
}

func NewProcessHandler(ps services.ProcessService) *ProcessHandler {
	return &ProcessHandler{processService: ps}
}

type groupIDsRequest struct {
	GroupIDs []int `json:"group_ids"`
}

// ListByContest godoc
// @Summary Этапы конкурса
// @Tags processes
// @Description Возвращает все этапы конкурса в порядке sort.
// @Produce json
// @Param contestID path int true "Contest ID"
// @Success 200 {object} map[string]interface{} "Список этапов"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Конкурс не найден"
// @Router /contests/{contestID}/processes [get]
func (h *ProcessHandler) ListByContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	processes, err := h.processService.ListAll(r.Context(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"processes": processes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID godoc
// @Summary Получить этап
// @Tags processes
// @Produce json
// @Param processID path int true "Process ID"
// @Success 200 {object} map[string]interface{} "Этап вместе с конкурсом"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Этап не найден"
// @Router /processes/{processID} [get]
func (h *ProcessHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	processID, err := getIDFromURL(r, "processID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	process, err := h.processService.GetInfo(r.Context(), processID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"process": process}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create godoc
// @Summary Создать этап
// @Tags processes
// @Description Добавляет следующий этап. Конкурс должен быть в статусе FINISH, предыдущий этап завершен.
// @Accept json
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param body body services.CreateProcessInput true "Данные этапа"
// @Success 201 {object} map[string]interface{} "Этап создан"
// @Failure 400 {object} map[string]string "Нарушение правил этапов"
// @Failure 403 {object} map[string]string "Не создатель конкурса"
// @Failure 404 {object} map[string]string "Конкурс не найден"
// @Failure 422 {object} map[string]string "Ошибка валидации"
// @Security BearerAuth
// @Router /contests/{contestID}/processes [post]
func (h *ProcessHandler) Create(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create a process")
		return
	}

	var input services.CreateProcessInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.ContestID = contestID

	process, err := h.processService.Create(r.Context(), account, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/v1/processes/%d", process.ID))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"process": process}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update godoc
// @Summary Изменить последний этап
// @Tags processes
// @Accept json
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param processID path int true "Process ID"
// @Param body body services.EditProcessInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{} "Этап обновлен"
// @Failure 400 {object} map[string]string "Этап не последний"
// @Failure 403 {object} map[string]string "Не создатель конкурса"
// @Failure 404 {object} map[string]string "Не найден"
// @Security BearerAuth
// @Router /contests/{contestID}/processes/{processID} [put]
func (h *ProcessHandler) Update(w http.ResponseWriter, r *http.Request) {
	contestID, processID, ok := contestAndProcessIDs(w, r)
	if !ok {
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update a process")
		return
	}

	var input services.EditProcessInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.ContestID = contestID
	input.ProcessID = processID

	process, err := h.processService.Edit(r.Context(), account, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"process": process}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Удалить последний этап
// @Tags processes
// @Param contestID path int true "Contest ID"
// @Param processID path int true "Process ID"
// @Success 204 "Удален"
// @Failure 400 {object} map[string]string "Этап не последний"
// @Failure 403 {object} map[string]string "Не создатель конкурса"
// @Failure 404 {object} map[string]string "Не найден"
// @Security BearerAuth
// @Router /contests/{contestID}/processes/{processID} [delete]
func (h *ProcessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contestID, processID, ok := contestAndProcessIDs(w, r)
	if !ok {
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete a process")
		return
	}

	if err := h.processService.Delete(r.Context(), account, contestID, processID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAttachment godoc
// @Summary Загрузить вложение этапа
// @Tags processes
// @Accept multipart/form-data
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param processID path int true "Process ID"
// @Param file formData file true "Файл задания"
// @Success 200 {object} map[string]interface{} "Этап с новым вложением"
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 415 {object} map[string]string "Тип файла не поддерживается"
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /contests/{contestID}/processes/{processID}/attachment [post]
func (h *ProcessHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	contestID, processID, ok := contestAndProcessIDs(w, r)
	if !ok {
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to upload an attachment")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize+1<<20)
	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for the file"))
		return
	}

	process, err := h.processService.UploadAttachment(r.Context(), account, contestID, processID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"process": process}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMembers godoc
// @Summary Команды этапа
// @Tags processes
// @Produce json
// @Param processID path int true "Process ID"
// @Success 200 {object} map[string]interface{} "Команды этапа"
// @Failure 404 {object} map[string]string "Этап не найден"
// @Router /processes/{processID}/groups [get]
func (h *ProcessHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	processID, err := getIDFromURL(r, "processID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.processService.ListMembers(r.Context(), processID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPromotable godoc
// @Summary Кандидаты на перевод в этап
// @Tags processes
// @Description Для первого этапа все команды конкурса, иначе участники предыдущего завершенного этапа.
// @Produce json
// @Param processID path int true "Process ID"
// @Success 200 {object} map[string]interface{} "Кандидаты"
// @Failure 400 {object} map[string]string "Предыдущий этап не завершен"
// @Failure 404 {object} map[string]string "Этап не найден или разрыв в sort"
// @Security BearerAuth
// @Router /processes/{processID}/promotable-groups [get]
func (h *ProcessHandler) ListPromotable(w http.ResponseWriter, r *http.Request) {
	processID, err := getIDFromURL(r, "processID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	groups, err := h.processService.ListPromotableGroups(r.Context(), account, processID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Promote godoc
// @Summary Перевести команды в этап
// @Tags processes
// @Accept json
// @Produce json
// @Param processID path int true "Process ID"
// @Param body body groupIDsRequest true "ID команд"
// @Success 200 {object} map[string]interface{} "ID добавленных команд"
// @Failure 400 {object} map[string]string "Этап не в статусе CREATING"
// @Failure 403 {object} map[string]string "Не создатель конкурса"
// @Failure 409 {object} map[string]string "Параллельное изменение"
// @Security BearerAuth
// @Router /processes/{processID}/groups/promote [post]
func (h *ProcessHandler) Promote(w http.ResponseWriter, r *http.Request) {
	processID, account, input, ok := h.readGroupMove(w, r)
	if !ok {
		return
	}

	added, err := h.processService.PromoteGroups(r.Context(), account, processID, input.GroupIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"added_group_ids": added}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Demote godoc
// @Summary Убрать команды из этапа
// @Tags processes
// @Accept json
// @Param processID path int true "Process ID"
// @Param body body groupIDsRequest true "ID команд"
// @Success 204 "Готово"
// @Failure 400 {object} map[string]string "Этап не в статусе CREATING"
// @Failure 403 {object} map[string]string "Не создатель конкурса"
// @Security BearerAuth
// @Router /processes/{processID}/groups/demote [post]
func (h *ProcessHandler) Demote(w http.ResponseWriter, r *http.Request) {
	processID, account, input, ok := h.readGroupMove(w, r)
	if !ok {
		return
	}

	if err := h.processService.DemoteGroups(r.Context(), account, processID, input.GroupIDs); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProcessHandler) readGroupMove(w http.ResponseWriter, r *http.Request) (int, string, groupIDsRequest, bool) {
	var input groupIDsRequest
	processID, err := getIDFromURL(r, "processID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, "", input, false
	}
	account, err := middleware.GetAccountFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, "", input, false
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return 0, "", input, false
	}
	if len(input.GroupIDs) == 0 {
		failedValidationResponse(w, r, map[string]string{"group_ids": "must contain at least one id"})
		return 0, "", input, false
	}
	return processID, account, input, true
}

func contestAndProcessIDs(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	processID, err := getIDFromURL(r, "processID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return contestID, processID, true
}
