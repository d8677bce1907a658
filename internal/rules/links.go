package rules

import "github.com/steveyegge/pathway/internal/types"

var (
	linkI589 = types.Link{Title: "Form I-589, Application for Asylum", URL: "https://www.uscis.gov/i-589", Kind: types.LinkForm}
	linkI765 = types.Link{Title: "Form I-765, Application for Employment Authorization", URL: "https://www.uscis.gov/i-765", Kind: types.LinkForm}
	linkI485 = types.Link{Title: "Form I-485, Adjustment of Status", URL: "https://www.uscis.gov/i-485", Kind: types.LinkForm}
	linkI730 = types.Link{Title: "Form I-730, Refugee/Asylee Relative Petition", URL: "https://www.uscis.gov/i-730", Kind: types.LinkForm}
	linkI131 = types.Link{Title: "Form I-131, Travel Document", URL: "https://www.uscis.gov/i-131", Kind: types.LinkForm}
	linkAR11 = types.Link{Title: "Form AR-11, Change of Address", URL: "https://www.uscis.gov/ar-11", Kind: types.LinkForm}

	linkEOIR33 = types.Link{Title: "Form EOIR-33, Change of Address (Immigration Court)", URL: "https://www.justice.gov/eoir/form-eoir-33-eoir", Kind: types.LinkForm}
	linkEOIR26 = types.Link{Title: "Form EOIR-26, Notice of Appeal", URL: "https://www.justice.gov/eoir/form-eoir-26-notice-appeal-decision-immigration-judge", Kind: types.LinkForm}

	linkUSCISStatus = types.Link{Title: "USCIS Case Status", URL: "https://egov.uscis.gov/", Kind: types.LinkOfficial}
	linkEOIRStatus  = types.Link{Title: "EOIR Automated Case Information", URL: "https://acis.eoir.justice.gov/", Kind: types.LinkOfficial}
	linkSSA         = types.Link{Title: "Social Security Number and Card", URL: "https://www.ssa.gov/number-card", Kind: types.LinkOfficial}
	linkTPS         = types.Link{Title: "Temporary Protected Status", URL: "https://www.uscis.gov/humanitarian/temporary-protected-status", Kind: types.LinkInfo}

	linkProBono   = types.Link{Title: "EOIR Pro Bono Legal Service Providers", URL: "https://www.justice.gov/eoir/list-pro-bono-legal-service-providers", Kind: types.LinkLegalAid}
	linkDirectory = types.Link{Title: "National Immigration Legal Services Directory", URL: "https://www.immigrationadvocates.org/legaldirectory/", Kind: types.LinkLegalAid}
)

func links(l ...types.Link) []types.Link {
	return l
}
