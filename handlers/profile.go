package handlers

import (
	"net/http"
	"strings"

	"bikeserve/models"
	"bikeserve/services/api"
	"bikeserve/services/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler manages a logged-in subscriber's vehicles and addresses.
type ProfileHandler struct {
	Marketplace api.MarketplaceService
	Photos      storage.PhotoService
}

func NewProfileHandler(m api.MarketplaceService, photos storage.PhotoService) *ProfileHandler {
	return &ProfileHandler{Marketplace: m, Photos: photos}
}

type vehicleInput struct {
	Brand              string            `json:"brand" binding:"required"`
	Model              string            `json:"model" binding:"required"`
	CC                 models.FlexString `json:"cc" binding:"required"`
	Year               models.FlexString `json:"year"`
	RegistrationNumber string            `json:"registrationNumber"`
	ImageURL           string            `json:"imageUrl"`
}

type addressInput struct {
	Line      string            `json:"line" binding:"required"`
	City      string            `json:"city" binding:"required"`
	Pincode   models.FlexString `json:"pincode" binding:"required"`
	Landmark  string            `json:"landmark"`
	IsDefault bool              `json:"isDefault"`
}

func (h *ProfileHandler) ListVehicles(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	respondResult(c, http.StatusOK, "vehicles", h.Marketplace.Vehicles(c.Request.Context(), sess))
}

// AddVehicle registers a vehicle. When the upstream is down and vehicles may be
// created offline, the response carries a local id and "degraded": true.
func (h *ProfileHandler) AddVehicle(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input vehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	v := models.Vehicle{
		Brand:              strings.TrimSpace(input.Brand),
		Model:              strings.TrimSpace(input.Model),
		CC:                 input.CC,
		Year:               input.Year,
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(input.RegistrationNumber)),
		ImageURL:           input.ImageURL,
	}
	res := h.Marketplace.AddVehicle(c.Request.Context(), sess, v)
	if !res.Failed() {
		getLogger(c).Info("vehicle added", zap.String("vehicleId", string(res.Data.ID)), zap.Bool("local", res.Data.Local))
	}
	respondResult(c, http.StatusCreated, "vehicle", res)
}

// UploadVehiclePhoto stores the multipart "photo" field as the vehicle's picture.
func (h *ProfileHandler) UploadVehiclePhoto(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if !sess.LoggedIn() {
		respondError(c, api.ErrNoSubscriber)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxPhotoBytes+1<<20)
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		badRequest(c, err)
		return
	}
	if fileHeader.Size > storage.MaxPhotoBytes {
		respondError(c, storage.ErrTooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	photo, err := h.Photos.UploadVehiclePhoto(c.Request.Context(), sess.SubscriberID, c.Param("id"), file, fileHeader.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photo, "imageUrl": photo.URL})
}

func (h *ProfileHandler) DeleteVehiclePhoto(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if !sess.LoggedIn() {
		respondError(c, api.ErrNoSubscriber)
		return
	}
	if err := h.Photos.DeleteVehiclePhoto(c.Request.Context(), sess.SubscriberID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) ListAddresses(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	respondResult(c, http.StatusOK, "addresses", h.Marketplace.Addresses(c.Request.Context(), sess))
}

// AddAddress must reach the upstream; profile addresses are never created offline.
func (h *ProfileHandler) AddAddress(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	a := models.Address{
		Line:      strings.TrimSpace(input.Line),
		City:      strings.TrimSpace(input.City),
		Pincode:   input.Pincode,
		Landmark:  strings.TrimSpace(input.Landmark),
		IsDefault: input.IsDefault,
	}
	respondResult(c, http.StatusCreated, "address", h.Marketplace.AddAddress(c.Request.Context(), sess, a, false))
}
