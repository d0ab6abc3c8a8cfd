package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/morningrun/perkpass-core/internal/app/errors"
	"github.com/morningrun/perkpass-core/internal/app/models"
	"github.com/morningrun/perkpass-core/internal/infrastructures"
)

// IdentityService is the client for the external identity
// collaborator: authentication, display names and host-role grants
// all live there, not in this core.
type IdentityService struct {
	client *http.Client
}

func NewIdentityService() *IdentityService {
	return &IdentityService{
		// A stalled identity service must not stall redemption
		// indefinitely.
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *IdentityService) GetCurrentUser(accessToken string) (*models.IdentityUser, error) {
	if accessToken == "" {
		return nil, errors.NewBadRequestError("Access token is required")
	}

	req, err := http.NewRequest("GET", infrastructures.Config.IdentityBaseURL+"/users/me", nil)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(accessToken, "Bearer ") {
		req.Header.Set("Authorization", accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var webResponse models.WebResponse[models.IdentityUser]
	err = json.NewDecoder(resp.Body).Decode(&webResponse)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(resp.StatusCode, webResponse.Message)
	}

	return &webResponse.Data, nil
}

func (s *IdentityService) GetUser(userId string) (*models.IdentityUser, error) {
	req, err := http.NewRequest("GET", infrastructures.Config.IdentityBaseURL+"/users/"+userId, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var webResponse models.WebResponse[models.IdentityUser]
	err = json.NewDecoder(resp.Body).Decode(&webResponse)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to decode response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(resp.StatusCode, webResponse.Message)
	}

	return &webResponse.Data, nil
}

// CanHost asks the identity service whether the user holds host
// authority for the given org. Redemption and participant listing
// are gated on this.
func (s *IdentityService) CanHost(userId, orgId string) (bool, error) {
	url := fmt.Sprintf("%s/users/%s/host-grants/%s", infrastructures.Config.IdentityBaseURL, userId, orgId)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return false, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	var webResponse models.WebResponse[models.HostGrant]
	err = json.NewDecoder(resp.Body).Decode(&webResponse)
	if err != nil {
		return false, errors.NewInternalServerError(err, "Failed to decode response body")
	}

	if resp.StatusCode != http.StatusOK {
		return false, errors.NewAppError(resp.StatusCode, webResponse.Message)
	}

	return webResponse.Data.CanHost, nil
}
