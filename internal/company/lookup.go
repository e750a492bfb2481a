package company

import (
	"context"

	"relay/pkg/models"
)

// Lookup resolves a company number to its details. A company that does not
// exist is reported with found == false and a nil error.
type Lookup interface {
	GetCompanyDetails(ctx context.Context, companyNumber string) (details models.CompanyDetails, found bool, err error)
}

const lookupContext = "company-lookup"
