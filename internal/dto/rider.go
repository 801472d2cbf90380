package dto

import "github.com/Additional-Code/fleet/internal/entity"

// AddressRequest is a postal address in a personal details payload.
type AddressRequest struct {
	Address1 string `json:"address1" validate:"required"`
	Address2 string `json:"address2"`
	Landmark string `json:"landmark"`
	State    string `json:"state" validate:"required"`
	City     string `json:"city" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,min=5"`
}

// ReferenceRequest is the emergency contact in a personal details payload.
type ReferenceRequest struct {
	Relation string `json:"relation" validate:"required"`
	Number   string `json:"number" validate:"required,numeric,len=10"`
}

// PersonalDetailsRequest is the body of PUT /rider/:id/personal.
type PersonalDetailsRequest struct {
	FullName  string           `json:"fullName" validate:"required,min=3"`
	DOB       string           `json:"dob" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Email     string           `json:"email" validate:"required,email"`
	Number    string           `json:"number" validate:"required,numeric,len=10"`
	Address   AddressRequest   `json:"address"`
	Reference ReferenceRequest `json:"reference"`
}

// ToEntity converts the payload into the stored section.
func (r PersonalDetailsRequest) ToEntity() entity.PersonalDetails {
	return entity.PersonalDetails{
		FullName: r.FullName,
		DOB:      r.DOB,
		Email:    r.Email,
		Number:   r.Number,
		Address: entity.Address{
			Address1: r.Address.Address1,
			Address2: r.Address.Address2,
			Landmark: r.Address.Landmark,
			State:    r.Address.State,
			City:     r.Address.City,
			Pincode:  r.Address.Pincode,
		},
		Reference: entity.Reference{
			Relation: r.Reference.Relation,
			Number:   r.Reference.Number,
		},
	}
}

// BankDetailsRequest is the body of PUT /rider/:id/bank.
type BankDetailsRequest struct {
	BankName string `json:"bankName" validate:"required,min=3"`
	Acc      string `json:"acc" validate:"required"`
	IFSC     string `json:"ifsc" validate:"required,min=11"`
}

// ToEntity converts the payload into the stored section.
func (r BankDetailsRequest) ToEntity() entity.BankDetails {
	return entity.BankDetails{BankName: r.BankName, Acc: r.Acc, IFSC: r.IFSC}
}

// DocumentRequest is a single uploaded document reference.
type DocumentRequest struct {
	Name  string `json:"name" validate:"required"`
	Image string `json:"image" validate:"required,url"`
}

// ToEntity converts the payload into a stored document.
func (r DocumentRequest) ToEntity() entity.Document {
	return entity.Document{Name: r.Name, Image: r.Image}
}

// DocumentsRequest is the body of PUT /rider/:id/documents.
type DocumentsRequest struct {
	Documents []DocumentRequest `json:"documents" validate:"required,min=1,dive"`
}

// ToEntity converts every document in the payload.
func (r DocumentsRequest) ToEntity() []entity.Document {
	return documentsToEntity(r.Documents)
}

// DocumentUpdateRequest is the body of PUT /rider/:id/document.
type DocumentUpdateRequest struct {
	Document DocumentRequest `json:"document"`
}

// RegisterRiderRequest is the body of POST /rider. Number defaults to the
// personal details number.
type RegisterRiderRequest struct {
	Number          string                 `json:"number" validate:"omitempty,numeric,len=10"`
	PersonalDetails PersonalDetailsRequest `json:"personalDetails"`
	BankDetails     BankDetailsRequest     `json:"bankDetails"`
	Documents       []DocumentRequest      `json:"documents" validate:"required,min=1,dive"`
}

// Registration is the decoded form of RegisterRiderRequest.
type Registration struct {
	Number          string
	PersonalDetails entity.PersonalDetails
	BankDetails     entity.BankDetails
	Documents       []entity.Document
}

// ToRegistration converts the payload for the rider service.
func (r RegisterRiderRequest) ToRegistration() Registration {
	number := r.Number
	if number == "" {
		number = r.PersonalDetails.Number
	}
	return Registration{
		Number:          number,
		PersonalDetails: r.PersonalDetails.ToEntity(),
		BankDetails:     r.BankDetails.ToEntity(),
		Documents:       documentsToEntity(r.Documents),
	}
}

func documentsToEntity(in []DocumentRequest) []entity.Document {
	out := make([]entity.Document, 0, len(in))
	for _, d := range in {
		out = append(out, d.ToEntity())
	}
	return out
}
