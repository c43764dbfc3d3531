package email

// PreviewData holds sample data for every template, keyed by template name.
var PreviewData = map[Template]map[string]string{
	TemplateMortalityAlert: {
		"FirstName": "Jane",
		"AnimalID":  "test_animal_id",
		"WLHID":     "test_wlh_id",
		"Species":   "Caribou",
		"DeviceID":  "123123",
		"Frequency": "155.1",
		"DateTime":  "2021-06-01T10:15:00-07:00",
		"Latitude":  "53.91",
		"Longitude": "-122.74",
	},
	TemplateOnboardingRequest: {
		"FirstName": "Jane",
		"LastName":  "Doe",
		"Domain":    "idir",
		"Username":  "jdoe",
		"Email":     "jane.doe@example.com",
		"Phone":     "250-555-0100",
		"RoleType":  "observer",
		"Reason":    "Caribou recovery project",
	},
}
