package constants

// Staff account status.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var StaffStatuses = []string{StatusActive, StatusInactive}

var StatusLabels = map[string]string{
	StatusActive:   "有効",
	StatusInactive: "無効",
}

// Organization category (組織区分).
const (
	CategorySending   = "sending"
	CategoryReceiving = "receiving"
	CategorySupport   = "support"
	CategoryReferral  = "referral"
)

var OrgCategories = []string{CategorySending, CategoryReceiving, CategorySupport, CategoryReferral}

var CategoryLabels = map[string]string{
	CategorySending:   "送出機関",
	CategoryReceiving: "受入機関",
	CategorySupport:   "登録支援機関",
	CategoryReferral:  "紹介事業者",
}
