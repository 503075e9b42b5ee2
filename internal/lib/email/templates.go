package email

// Template names an HTML file under templates/.
type Template string

const (
	TemplateItemStatus Template = "item_status"
)
