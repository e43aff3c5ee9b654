package api

import (
	"net/url"

	"github.com/vbonduro/briefdesk/internal/domain"
)

const (
	pathUpload          = "/upload-file"
	pathKYC             = "/account/kyc"
	pathPublicSettings  = "/account/settings/public-access"
	pathSubscribe       = "/subscribe"
	pathPublicAgent     = "/public/agents/"
	pathDocVerification = "/document-verification/"
)

// propertySegment is the listing collection path of a transaction type.
func propertySegment(t domain.BriefType) string {
	switch t {
	case domain.TypeRent:
		return "rents/rent"
	case domain.TypeJV:
		return "joint-ventures"
	case domain.TypeShortlet:
		return "shortlets/shortlet"
	}
	return "sell"
}

func propertyPath(t domain.BriefType, id string) string {
	return "/properties/" + propertySegment(t) + "/" + url.PathEscape(id)
}

// CreateBriefPath returns the creation endpoint for a draft. Agents post
// listings to their account namespace.
func CreateBriefPath(kind domain.Kind, t domain.BriefType, agent bool) string {
	if kind == domain.KindPreference {
		return "/preferences/" + string(t) + "/new"
	}
	if agent {
		return "/account/property/" + string(t) + "/create"
	}
	return "/properties/" + propertySegment(t) + "/new"
}
