package model

// Contact is the shop's public contact information
type Contact struct {
	ShopName    string `json:"shopName"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumner"` // field name as served by the API
	MailID      string `json:"mailId"`
}

// Empty reports whether no field is set
func (c Contact) Empty() bool {
	return c.ShopName == "" && c.Address == "" && c.PhoneNumber == "" && c.MailID == ""
}
