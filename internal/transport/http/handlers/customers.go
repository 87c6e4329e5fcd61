package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/transport/http/middleware"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/usecase"
)

// CustomerHandler exposes customer and document endpoints. Every route
// requires an authenticated user; record visibility is scoped inside the
// service layer.
type CustomerHandler struct {
	customers *usecase.CustomerService
}

func NewCustomerHandler(customers *usecase.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.create)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.delete)

	r.GET("/:id/documents", h.listDocuments)
	r.POST("/:id/documents", h.uploadDocument)
	r.GET("/:id/documents/:docID", h.downloadDocument)
	r.DELETE("/:id/documents/:docID", h.deleteDocument)
}

var customerErrorCases = []ErrorCase{
	{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "invalid customer payload"},
	{Err: usecase.ErrCustomerNotFound, Status: http.StatusNotFound, Message: "customer not found"},
	{Err: usecase.ErrDocumentNotFound, Status: http.StatusNotFound, Message: "document not found"},
	{Err: usecase.ErrDuplicateCustomer, Status: http.StatusConflict, Message: "customer email already registered"},
}

func actor(c *gin.Context) (*domain.User, bool) {
	user, ok := middleware.AuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
	}
	return user, ok
}

func customerInput(req CustomerRequest) usecase.CustomerInput {
	return usecase.CustomerInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		PostalCode:        req.PostalCode,
		Country:           req.Country,
		BusinessName:      req.BusinessName,
		BusinessType:      req.BusinessType,
		BusinessRegNumber: req.BusinessRegNumber,
		TINNumber:         req.TINNumber,
		VATNumber:         req.VATNumber,
		Activities:        req.Activities,
	}
}

func (h *CustomerHandler) list(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.customers.List(c.Request.Context(), user, port.CustomerFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "list customers failed"))
		return
	}

	views := make([]CustomerView, 0, len(page.Customers))
	for _, customer := range page.Customers {
		views = append(views, toCustomerView(customer))
	}
	c.JSON(http.StatusOK, CustomerListResponse{
		Customers: views,
		Total:     page.Total,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
}

func (h *CustomerHandler) create(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid customer payload"))
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), user, customerInput(req))
	if err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "create customer failed")
		return
	}
	c.JSON(http.StatusCreated, toCustomerView(*customer))
}

func (h *CustomerHandler) get(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	customer, err := h.customers.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "get customer failed")
		return
	}
	c.JSON(http.StatusOK, toCustomerView(*customer))
}

func (h *CustomerHandler) update(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid customer payload"))
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), user, c.Param("id"), customerInput(req))
	if err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "update customer failed")
		return
	}
	c.JSON(http.StatusOK, toCustomerView(*customer))
}

func (h *CustomerHandler) delete(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	if err := h.customers.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "delete customer failed")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "customer deleted"})
}

func (h *CustomerHandler) listDocuments(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	docs, err := h.customers.ListDocuments(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "list documents failed")
		return
	}

	views := make([]DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, toDocumentView(doc))
	}
	c.JSON(http.StatusOK, gin.H{"documents": views})
}

func (h *CustomerHandler) uploadDocument(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "a file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "could not read uploaded file"))
		return
	}
	defer file.Close()

	doc, err := h.customers.AttachDocument(c.Request.Context(), user, c.Param("id"), usecase.DocumentUpload{
		DocumentType: c.PostForm("document_type"),
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Contents:     file,
	})
	if err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "upload document failed")
		return
	}

	c.JSON(http.StatusCreated, toDocumentView(*doc))
}

func (h *CustomerHandler) downloadDocument(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	doc, reader, err := h.customers.OpenDocument(c.Request.Context(), user, c.Param("id"), c.Param("docID"))
	if err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "download document failed")
		return
	}
	defer reader.Close()

	contentType := doc.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.DataFromReader(http.StatusOK, doc.FileSize, contentType, reader, nil)
}

func (h *CustomerHandler) deleteDocument(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	if err := h.customers.DeleteDocument(c.Request.Context(), user, c.Param("id"), c.Param("docID")); err != nil {
		RespondWithMappedError(c, err, customerErrorCases, http.StatusInternalServerError, "delete document failed")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "document deleted"})
}
