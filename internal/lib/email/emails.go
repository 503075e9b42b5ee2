package email

import "fmt"

// SendItemStatusEmail tells the owner of an item that an action changed it.
func (c *Client) SendItemStatusEmail(to string, itemID int64, itemName, action string) error {
	data := map[string]string{
		"ItemID":   fmt.Sprint(itemID),
		"ItemName": itemName,
		"Action":   action,
	}

	return c.SendEmail(
		to,
		fmt.Sprintf("Your menu item %q was updated", itemName),
		TemplateItemStatus,
		data,
	)
}
