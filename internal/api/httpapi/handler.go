package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	app "returns-desk/internal/application"
	"returns-desk/internal/container"
	"returns-desk/internal/domain/entity"
	"returns-desk/internal/infrastructure/backend"
	"returns-desk/internal/infrastructure/imaging"
	"returns-desk/internal/infrastructure/vision"
)

// OperatorHeader выбирает рабочее место оператора. Без заголовка используется общее.
const OperatorHeader = "X-Operator-ID"

type Handler struct {
	deps          *container.Container
	maxUploadSize int64
	log           *zap.Logger
}

func NewHandler(deps *container.Container, maxUploadSize int64, log *zap.Logger) *Handler {
	return &Handler{
		deps:          deps,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

type tagSearchRequest struct {
	Tags []string `json:"tags"`
}

type toggleTagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

type updateItemRequest struct {
	DecisionModel      *string  `json:"decisionModel"`
	ClaimApprovalModel *string  `json:"claimApprovalModel"`
	SpecialCases       *string  `json:"specialCases"`
	AddTags            []string `json:"addTags"`
	RemoveTags         []string `json:"removeTags"`
}

type exportRequest struct {
	Results []entity.QueryResult `json:"results"`
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) workspace(c *gin.Context) *app.Workspace {
	id, _ := strconv.ParseInt(c.GetHeader(OperatorHeader), 10, 64)
	return h.deps.Workspaces.For(id)
}

func (h *Handler) ItemDetails(c *gin.Context) {
	item, err := h.workspace(c).Item.Lookup(c.Request.Context(), c.Param("itemNumber"))
	if err != nil {
		h.fail(c, err, app.MsgFetchItemError)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.deps.ItemService.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err, app.MsgFetchCategoriesError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) ItemTags(c *gin.Context) {
	ws := h.workspace(c)
	tags, err := ws.Query.LoadTags(c.Request.Context(), c.Param("itemNumber"), c.Query("category"))
	if err != nil {
		h.fail(c, err, app.MsgFetchTagsError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags, "selected": ws.Query.SelectedTags()})
}

func (h *Handler) ToggleTag(c *gin.Context) {
	var req toggleTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag is required"})
		return
	}
	ws := h.workspace(c)
	selected := ws.Query.ToggleTag(req.Tag)
	c.JSON(http.StatusOK, gin.H{"tag": req.Tag, "selected": selected, "tags": ws.Query.SelectedTags()})
}

func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	results, err := h.workspace(c).Query.SearchText(c.Request.Context(), req.Query)
	if err != nil {
		h.fail(c, err, app.MsgFetchResultsError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": nonNil(results)})
}

// SearchTags ищет по тегам из тела запроса, а без них по выбранным на панели.
func (h *Handler) SearchTags(c *gin.Context) {
	var req tagSearchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	query := h.workspace(c).Query
	if len(req.Tags) > 0 {
		selected := entity.NewTagSet(query.SelectedTags()...)
		wanted := entity.NewTagSet(req.Tags...)
		for _, t := range selected.Tags() {
			if !wanted.Contains(t) {
				query.ToggleTag(t)
			}
		}
		for _, t := range wanted.Tags() {
			if !selected.Contains(t) {
				query.ToggleTag(t)
			}
		}
	}

	results, err := query.SearchSelectedTags(c.Request.Context())
	if err != nil {
		h.fail(c, err, app.MsgFetchResultsError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": nonNil(results)})
}

func (h *Handler) QualityCheck(c *gin.Context) {
	uploads, ok := h.acquire(c)
	if !ok {
		return
	}
	report, err := h.deps.InspectionService.SubmitQualityCheck(c.Request.Context(), c.PostForm("itemNumber"), uploads)
	if err != nil {
		h.fail(c, err, app.MsgSubmitImagesError)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Claim(c *gin.Context) {
	uploads, ok := h.acquire(c)
	if !ok {
		return
	}
	decision, err := h.deps.InspectionService.SubmitClaim(c.Request.Context(),
		c.PostForm("itemNumber"), c.PostForm("claimDetails"), uploads)
	if err != nil {
		h.fail(c, err, app.MsgSubmitImagesError)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"claim_validation_reasoning": decision.ValidationReasoning,
		"Approval":                   decision.Approval,
		"approved":                   decision.Approved(),
		"repair_reasoning":           decision.RepairReasoning,
		"toolkits_recommended":       decision.Toolkits,
	})
}

func (h *Handler) Onboard(c *gin.Context) {
	uploads, ok := h.acquire(c)
	if !ok {
		return
	}
	err := h.deps.ItemService.Onboard(c.Request.Context(),
		c.PostForm("itemNumber"), c.PostForm("itemDescription"), uploads.Images())
	if err != nil {
		h.fail(c, err, app.MsgOnboardError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": app.MsgOnboardSuccess})
}

// UpdateItem применяет правки к текущей карточке и отправляет модель решений.
func (h *Handler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	editor, err := app.LoadItemEditor(ctx, h.deps.ItemService, c.Param("itemNumber"))
	if err != nil {
		h.fail(c, err, app.MsgFetchItemError)
		return
	}

	if req.DecisionModel != nil {
		editor.SetDecisionModel(*req.DecisionModel)
	}
	if req.ClaimApprovalModel != nil {
		editor.SetClaimApprovalModel(*req.ClaimApprovalModel)
	}
	if req.SpecialCases != nil {
		editor.SetSpecialCases(*req.SpecialCases)
	}
	for _, t := range req.RemoveTags {
		editor.RemoveTag(t)
	}
	for _, t := range req.AddTags {
		editor.AddTag(t)
	}

	if err := editor.Submit(ctx); err != nil {
		h.fail(c, err, app.MsgUpdateModelError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": app.MsgUpdateModelSuccess, "item": editor.Draft()})
}

// Export выгружает результаты из тела запроса или последние результаты поиска оператора.
func (h *Handler) Export(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	results := req.Results
	if results == nil {
		results = h.workspace(c).Query.Results()
	}

	res, err := h.deps.ExportService.Export(c.Request.Context(), results)
	if err != nil {
		h.fail(c, err, app.MsgExportError)
		return
	}
	if res == nil {
		c.JSON(http.StatusOK, gin.H{"files": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch": res.BatchID, "files": res.Locations})
}

// acquire читает части images и нормализует их одной пачкой.
func (h *Handler) acquire(c *gin.Context) (*app.UploadList, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return nil, false
	}

	headers := form.File["images"]
	files := make([]entity.AcquiredFile, 0, len(headers))
	for _, fh := range headers {
		if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("%s exceeds %d MB", fh.Filename, h.maxUploadSize/(1024*1024)),
			})
			return nil, false
		}
		file, err := readPart(fh)
		if err != nil {
			h.log.Error("failed to read upload", zap.String("file", fh.Filename), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read " + fh.Filename})
			return nil, false
		}
		files = append(files, file)
	}

	uploads := h.deps.Workspaces.NewUploads()
	if _, err := uploads.Add(c.Request.Context(), files...); err != nil {
		h.fail(c, err, app.MsgSubmitImagesError)
		return nil, false
	}
	return uploads, true
}

func readPart(fh *multipart.FileHeader) (entity.AcquiredFile, error) {
	f, err := fh.Open()
	if err != nil {
		return entity.AcquiredFile{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return entity.AcquiredFile{}, err
	}
	return entity.AcquiredFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// fail переводит ошибку в код ответа. Сбои бэкенда скрываются за общим сообщением,
// но message из ответа бэкенда, если он был, передаётся как detail.
func (h *Handler) fail(c *gin.Context, err error, generic string) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, app.ErrStale):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrMissingItemNumber), errors.Is(err, app.ErrEmptyUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, imaging.ErrDecode), errors.Is(err, vision.ErrRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		body := gin.H{"error": generic}
		if msg := backend.UserMessage(err); msg != "" {
			body["detail"] = msg
		}
		c.JSON(http.StatusBadGateway, body)
	}
}

func nonNil(results []entity.QueryResult) []entity.QueryResult {
	if results == nil {
		return []entity.QueryResult{}
	}
	return results
}
