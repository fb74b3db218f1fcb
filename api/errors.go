package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taxidispatch/pkg/models"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error and keeps its detail off the wire.
func writeError(c *gin.Context, err error) {
	var (
		validationErr   *models.ValidationError
		invalidRoute    *models.InvalidRouteError
		illegalTrans    *models.IllegalTransitionError
		alreadyAssigned *models.AlreadyAssignedError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &invalidRoute):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotAuthorized), errors.Is(err, models.ErrNotEligible):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrDriverNotFound),
		errors.Is(err, models.ErrDistrictNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &illegalTrans),
		errors.As(err, &alreadyAssigned),
		errors.Is(err, models.ErrNotAcceptable),
		errors.Is(err, models.ErrOrderTerminal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
