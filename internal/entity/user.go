package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// User roles.
const (
	RoleRider  = "rider"
	RolePacker = "packer"
)

// Review statuses for rider onboarding.
const (
	ReviewStatusNotSubmitted = "not_submitted"
	ReviewStatusPending      = "pending"
	ReviewStatusApproved     = "approved"
	ReviewStatusRejected     = "rejected"
)

// VerificationPending marks bank details and documents awaiting back-office review.
const VerificationPending = "pending"

// User is an identity and onboarding record for riders and packers.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              string          `bun:"id,pk" json:"id"`
	Number          string          `bun:"number,unique,nullzero" json:"number,omitempty"`
	Role            string          `bun:"role,notnull" json:"role"`
	Name            string          `bun:"name" json:"name,omitempty"`
	Email           string          `bun:"email,unique,nullzero" json:"email,omitempty"`
	PasswordHash    string          `bun:"password_hash,nullzero" json:"-"`
	ProfileStatus   ProfileStatus   `bun:"profile_status" json:"profileStatus"`
	PersonalDetails PersonalDetails `bun:"personal_details" json:"personalDetails"`
	BankDetails     BankDetails     `bun:"bank_details" json:"bankDetails"`
	Documents       []Document      `bun:"documents" json:"documents"`
	ReviewStatus    string          `bun:"review_status,notnull" json:"reviewStatus"`
	SubmittedAt     *time.Time      `bun:"submitted_at" json:"submittedAt"`
	AccountVerified bool            `bun:"account_verified,notnull,default:false" json:"accountVerified"`
	CreatedAt       time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time       `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// ProfileStatus holds per-section onboarding completion flags.
type ProfileStatus struct {
	PersonalInfoCompleted bool `json:"personalInfoCompleted"`
	BankDetailsCompleted  bool `json:"bankDetailsCompleted"`
	DocumentsCompleted    bool `json:"documentsCompleted"`
}

// Complete reports whether every onboarding section is filled in.
func (p ProfileStatus) Complete() bool {
	return p.PersonalInfoCompleted && p.BankDetailsCompleted && p.DocumentsCompleted
}

// PersonalDetails is the rider's personal section.
type PersonalDetails struct {
	FullName  string    `json:"fullName,omitempty"`
	DOB       string    `json:"dob,omitempty"`
	Email     string    `json:"email,omitempty"`
	Number    string    `json:"number,omitempty"`
	Address   Address   `json:"address"`
	Reference Reference `json:"reference"`
}

// Address is a postal address.
type Address struct {
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	Landmark string `json:"landmark,omitempty"`
	State    string `json:"state,omitempty"`
	City     string `json:"city,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
}

// Reference is an emergency contact.
type Reference struct {
	Relation string `json:"relation,omitempty"`
	Number   string `json:"number,omitempty"`
}

// BankDetails is the rider's payout account.
type BankDetails struct {
	BankName string `json:"bankName,omitempty"`
	Acc      string `json:"acc,omitempty"`
	IFSC     string `json:"ifsc,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Document is an uploaded KYC document.
type Document struct {
	Name            string  `json:"name"`
	Image           string  `json:"image"`
	Verified        string  `json:"verified"`
	RejectionReason *string `json:"rejectionReason"`
}
