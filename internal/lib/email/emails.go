package email

import "context"

// SendParcelCreatedEmail tells the parcel's creator the booking went
// through. title may be empty.
func (c *Client) SendParcelCreatedEmail(ctx context.Context, to, parcelID, title string) error {
	if title == "" {
		title = "parcel"
	}

	data := map[string]string{
		"Recipient":   to,
		"ParcelID":    parcelID,
		"ParcelTitle": title,
	}

	return c.SendEmail(ctx, to, "Your parcel is booked", TemplateParcelCreated, data)
}
