package handlers

import (
	"net/http"

	"quickbites-api/api"
	"quickbites-api/middleware"
	"quickbites-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMyProfile returns the customer profile with addresses, wallet balance
// and loyalty points.
func (h *CustomerHandler) GetMyProfile(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var profile models.CustomerProfile
	if err := h.DB.Preload("Addresses").Where("user_id = ?", identity.UserID).First(&profile).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No customer profile found")
		return
	}
	api.OK(c, http.StatusOK, gin.H{"profile": profile}, "")
}

type AddressRequest struct {
	Label         string  `json:"label"`
	StreetAddress string  `json:"street_address" binding:"required"`
	Landmark      string  `json:"landmark"`
	City          string  `json:"city" binding:"required"`
	State         string  `json:"state" binding:"required"`
	Pincode       string  `json:"pincode" binding:"required,len=6,numeric"`
	Latitude      float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude     float64 `json:"longitude" binding:"min=-180,max=180"`
	IsDefault     bool    `json:"is_default"`
}

// AddAddress appends an address. At most one address stays flagged default;
// the invariant is enforced on every mutation, not assumed.
func (h *CustomerHandler) AddAddress(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	var profile models.CustomerProfile
	if err := h.DB.Preload("Addresses").Where("user_id = ?", identity.UserID).First(&profile).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No customer profile found")
		return
	}

	addr := models.Address{
		ProfileID:     profile.ID,
		Label:         req.Label,
		StreetAddress: req.StreetAddress,
		Landmark:      req.Landmark,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		IsDefault:     req.IsDefault || len(profile.Addresses) == 0,
	}

	if addr.IsDefault {
		if err := h.DB.Model(&models.Address{}).
			Where("profile_id = ?", profile.ID).
			Update("is_default", false).Error; err != nil {
			api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to save address")
			return
		}
	}
	if err := h.DB.Create(&addr).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to save address")
		return
	}

	api.OK(c, http.StatusCreated, gin.H{"address": addr}, "Address added")
}

// SetDefaultAddress flags one address default and demotes every other.
func (h *CustomerHandler) SetDefaultAddress(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	addrID := parseID(c)

	var profile models.CustomerProfile
	if err := h.DB.Where("user_id = ?", identity.UserID).First(&profile).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No customer profile found")
		return
	}

	var addr models.Address
	if err := h.DB.Where("id = ? AND profile_id = ?", addrID, profile.ID).First(&addr).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Address not found")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("profile_id = ?", profile.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&addr).Update("is_default", true).Error
	})
	if err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to update address")
		return
	}

	api.OK(c, http.StatusOK, nil, "Default address updated")
}

// DeleteAddress removes an address. If the default is removed, the oldest
// remaining address becomes the default.
func (h *CustomerHandler) DeleteAddress(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	addrID := parseID(c)

	var profile models.CustomerProfile
	if err := h.DB.Where("user_id = ?", identity.UserID).First(&profile).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "No customer profile found")
		return
	}

	var addr models.Address
	if err := h.DB.Where("id = ? AND profile_id = ?", addrID, profile.ID).First(&addr).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeNotFound, "Address not found")
		return
	}

	if err := h.DB.Delete(&addr).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to delete address")
		return
	}

	if addr.IsDefault {
		var next models.Address
		if err := h.DB.Where("profile_id = ?", profile.ID).Order("created_at asc").First(&next).Error; err == nil {
			h.DB.Model(&next).Update("is_default", true)
		}
	}

	api.OK(c, http.StatusOK, nil, "Address deleted")
}
