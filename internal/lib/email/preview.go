package email

// PreviewData holds sample values for every template, used to render
// previews and to check templates in tests.
var PreviewData = map[Template]map[string]string{
	TemplateItemStatus: {
		"ItemID":   "42",
		"ItemName": "Tomato Soup",
		"Action":   "unarchive",
	},
}

// Preview renders templateName with its sample data.
func Preview(templateName Template) (string, error) {
	return Render(templateName, PreviewData[templateName])
}
