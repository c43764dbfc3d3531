package email

import (
	"strconv"

	"github.com/deppfellow/bctw-api/internal/model"
)

func (c *Client) SendMortalityAlert(ev model.MortalityAlertEvent) error {
	return c.SendEmail(ev.Email, "BCTW mortality alert: "+ev.AnimalID, TemplateMortalityAlert, MortalityAlertData(ev))
}

// SendOnboardingRequest tells an administrator about a pending access request.
func (c *Client) SendOnboardingRequest(to string, u model.OnboardingUser) error {
	return c.SendEmail(to, "BCTW access request from "+u.FirstName+" "+u.LastName, TemplateOnboardingRequest, OnboardingRequestData(u))
}

func MortalityAlertData(ev model.MortalityAlertEvent) map[string]string {
	return map[string]string{
		"FirstName": ev.FirstName,
		"AnimalID":  ev.AnimalID,
		"WLHID":     ev.WLHID,
		"Species":   ev.Species,
		"DeviceID":  strconv.Itoa(ev.DeviceID),
		"Frequency": ev.Frequency.String(),
		"DateTime":  ev.DateTime,
		"Latitude":  strconv.FormatFloat(ev.Latitude, 'f', -1, 64),
		"Longitude": strconv.FormatFloat(ev.Longitude, 'f', -1, 64),
	}
}

func OnboardingRequestData(u model.OnboardingUser) map[string]string {
	data := map[string]string{
		"FirstName": u.FirstName,
		"LastName":  u.LastName,
		"Domain":    u.Domain,
		"Username":  u.Username,
		"Email":     u.Email,
		"RoleType":  u.RoleType,
		"Phone":     "-",
		"Reason":    "-",
	}
	if u.Phone != nil && *u.Phone != "" {
		data["Phone"] = *u.Phone
	}
	if u.Reason != nil && *u.Reason != "" {
		data["Reason"] = *u.Reason
	}
	return data
}
