package email

// PreviewData contains sample template data for local preview/testing.
//
//	PreviewData["parcel_created"]["ParcelID"] == "64b7f0c2a1b2c3d4e5f60718"
var PreviewData = map[Template]map[string]string{
	TemplateParcelCreated: {
		"Recipient":   "john@example.com",
		"ParcelID":    "64b7f0c2a1b2c3d4e5f60718",
		"ParcelTitle": "Documents",
	},
}
