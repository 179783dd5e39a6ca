package dto

import (
	"net/url"
	"strconv"
)

// ListNotificationsParams are the filters of GET /notifications
type ListNotificationsParams struct {
	Page  int    `form:"page" json:"page" validate:"gte=0"`
	Limit int    `form:"limit" json:"limit" validate:"gte=0,lte=100"`
	Type  string `form:"type" json:"type" validate:"max=50"`
}

// Values encodes the params as an upstream query string
func (p ListNotificationsParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Type != "" {
		v.Set("type", p.Type)
	}
	return v
}
