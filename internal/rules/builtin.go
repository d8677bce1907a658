package rules

import (
	"fmt"

	"github.com/steveyegge/pathway/internal/deadlines"
	"github.com/steveyegge/pathway/internal/types"
)

// Bundle ids of the built-in table.
const (
	BundleAffirmativeFiling  = "affirmative-filing"
	BundleLateFiling         = "late-filing-exception"
	BundleAffirmativePending = "affirmative-pending"
	BundleWorkAuthorization  = "work-authorization"
	BundleImmigrationCourt   = "immigration-court"
	BundleFindAttorney       = "find-attorney"
	BundleMissedHearing      = "missed-hearing"
	BundleAppeal             = "appeal"
	BundleAffirmativeDenial  = "affirmative-denial"
	BundleTPS                = "tps"
	BundleParole             = "parole"
	BundleAsylumGranted      = "asylum-granted"
)

// EvidenceLeadDays is how far ahead of the filing deadline evidence gathering is due.
const EvidenceLeadDays = 60

// StepID namespaces a bundle-local step id.
func StepID(bundleID, local string) string {
	return bundleID + ":" + local
}

// Default returns the built-in rule table.
func Default() *Table {
	return MustNewTable(Builtin()...)
}

// Builtin returns the built-in bundles in evaluation order.
func Builtin() []Bundle {
	return []Bundle{
		affirmativeFiling(),
		lateFiling(),
		affirmativePending(),
		workAuthorization(),
		immigrationCourt(),
		findAttorney(),
		missedHearing(),
		appeal(),
		affirmativeDenial(),
		tps(),
		parole(),
		asylumGranted(),
	}
}

func affirmativeFiling() Bundle {
	id := BundleAffirmativeFiling
	return Bundle{
		ID:          id,
		Name:        "Affirmative Asylum Application",
		Description: "File your asylum application with USCIS within one year of arrival.",
		Priority:    1,
		Trigger: func(in Input) bool {
			f := in.Facts
			return !f.Filed() && !f.InCourt() && f.Pending() && !f.EntryDate.IsZero()
		},
		Generate: func(in Input) []types.Step {
			deadline := deadlines.OneYearDeadline(in.Facts)
			fileDesc := fmt.Sprintf("Submit Form I-589 to USCIS by %s. This is one year after you entered the U.S.", deadline)
			if deadlines.IsExtended(in.Facts) {
				fileDesc = fmt.Sprintf("Submit Form I-589 to USCIS by %s. Your protected status extends the usual one-year deadline.", deadline)
			}
			return []types.Step{
				{
					ID:          StepID(id, "gather-evidence"),
					Title:       "Gather evidence for your application",
					Description: "Collect identity documents, country condition reports, and statements from witnesses. Translate anything not in English.",
					DueDate:     deadline.AddDays(-EvidenceLeadDays),
					Priority:    types.PriorityHigh,
				},
				{
					ID:          StepID(id, "file-application"),
					Title:       "File your asylum application",
					Description: fileDesc,
					Kind:        types.KindFilingDeadline,
					DueDate:     deadline,
					Priority:    types.PriorityCritical,
					Links:       links(linkI589),
				},
				{
					ID:            StepID(id, "save-receipt"),
					Title:         "Keep your filing receipt",
					Description:   "Store the I-797 receipt notice somewhere safe. It proves you filed on time.",
					Priority:      types.PriorityMedium,
					ShowAfterStep: StepID(id, "file-application"),
				},
			}
		},
	}
}

func lateFiling() Bundle {
	id := BundleLateFiling
	return Bundle{
		ID:          id,
		Name:        "Late Filing Exception",
		Description: "The one-year deadline has passed. You may still qualify for an exception.",
		Priority:    0,
		Trigger: func(in Input) bool {
			f := in.Facts
			if f.Filed() || !f.Pending() || f.EntryDate.IsZero() {
				return false
			}
			return deadlines.PastDue(deadlines.OneYearDeadline(f), in.Today)
		},
		Generate: func(in Input) []types.Step {
			return []types.Step{
				{
					ID:          StepID(id, "consult-attorney"),
					Title:       "Talk to a lawyer about the late filing",
					Description: "Late applications need a changed or extraordinary circumstances exception. A lawyer can tell you if one applies.",
					Priority:    types.PriorityCritical,
					Links:       links(linkProBono, linkDirectory),
				},
				{
					ID:          StepID(id, "document-circumstances"),
					Title:       "Document why you could not file on time",
					Description: "Collect medical records, proof of prior legal status, or evidence of changed conditions in your country.",
					Priority:    types.PriorityHigh,
				},
				{
					ID:          StepID(id, "file-promptly"),
					Title:       "File as soon as possible",
					Description: "Exceptions require filing within a reasonable time after the circumstance ends. Do not wait.",
					Priority:    types.PriorityCritical,
					Links:       links(linkI589),
				},
			}
		},
	}
}

func affirmativePending() Bundle {
	id := BundleAffirmativePending
	return Bundle{
		ID:          id,
		Name:        "Application Pending with USCIS",
		Description: "Your application is filed. Prepare for biometrics and your interview.",
		Priority:    2,
		Trigger: func(in Input) bool {
			f := in.Facts
			return f.Filed() && !f.InCourt() && f.Pending()
		},
		Generate: func(in Input) []types.Step {
			f := in.Facts
			steps := []types.Step{
				{
					ID:          StepID(id, "biometrics"),
					Title:       "Attend your biometrics appointment",
					Description: "USCIS will mail a notice with the date and place. Bring the notice and photo ID.",
					Priority:    types.PriorityHigh,
				},
			}
			if f.InterviewDate.IsZero() {
				steps = append(steps, types.Step{
					ID:          StepID(id, "watch-interview-notice"),
					Title:       "Watch for your interview notice",
					Description: "Check your mail and your USCIS online account. Add the interview date here when you get it.",
					Priority:    types.PriorityMedium,
					Links:       links(linkUSCISStatus),
				})
			} else {
				steps = append(steps,
					types.Step{
						ID:          StepID(id, "prepare-interview"),
						Title:       "Prepare for your asylum interview",
						Description: "Review your application, arrange an interpreter, and gather original documents.",
						DueDate:     f.InterviewDate.AddDays(-14),
						Priority:    types.PriorityHigh,
					},
					types.Step{
						ID:             StepID(id, "attend-interview"),
						Title:          "Attend your asylum interview",
						Description:    fmt.Sprintf("Your interview is on %s. Arrive early with your interpreter and documents.", f.InterviewDate),
						Kind:           types.KindInterview,
						DueDate:        f.InterviewDate,
						Priority:       types.PriorityCritical,
						IsEditableDate: true,
					},
				)
			}
			steps = append(steps,
				types.Step{
					ID:          StepID(id, "change-address"),
					Title:       "Report any change of address within 10 days",
					Description: "Missing a USCIS notice because of an old address can lead to a denial.",
					Priority:    types.PriorityMedium,
					Links:       links(linkAR11),
				},
				types.Step{
					ID:          StepID(id, "check-status"),
					Title:       "Check your case status",
					Description: "Use the receipt number on your I-797 notice.",
					Priority:    types.PriorityLow,
					Links:       links(linkUSCISStatus),
				},
			)
			return steps
		},
	}
}

func workAuthorization() Bundle {
	id := BundleWorkAuthorization
	return Bundle{
		ID:          id,
		Name:        "Work Authorization",
		Description: "Asylum applicants can apply for a work permit 150 days after filing.",
		Priority:    3,
		Trigger: func(in Input) bool {
			f := in.Facts
			if !f.Pending() || f.HasWorkPermit {
				return false
			}
			eligible, _ := deadlines.WorkPermitEligible(f)
			return !eligible.IsZero()
		},
		Generate: func(in Input) []types.Step {
			eligible, provisional := deadlines.WorkPermitEligible(in.Facts)
			desc := fmt.Sprintf("You can apply for a work permit on or after %s (150 days after filing).", eligible)
			if provisional {
				desc = fmt.Sprintf("Estimated from your entry date: about %s. The real date is 150 days after you file and will update once you do.", eligible)
			}
			return []types.Step{
				{
					ID:          StepID(id, "apply-ead"),
					Title:       "Apply for a work permit",
					Description: desc,
					Kind:        types.KindWorkPermit,
					DueDate:     eligible,
					Priority:    types.PriorityHigh,
					Links:       links(linkI765),
				},
			}
		},
	}
}

func immigrationCourt() Bundle {
	id := BundleImmigrationCourt
	return Bundle{
		ID:          id,
		Name:        "Immigration Court",
		Description: "Your case is in immigration court. Missing a hearing can result in a removal order.",
		Priority:    0,
		Trigger: func(in Input) bool {
			f := in.Facts
			return f.InCourt() && f.Pending()
		},
		Generate: func(in Input) []types.Step {
			f := in.Facts
			var steps []types.Step
			if f.NextHearingDate.IsZero() {
				steps = append(steps, types.Step{
					ID:          StepID(id, "find-hearing-date"),
					Title:       "Find out your next hearing date",
					Description: "Call 1-800-898-7180 or check online with your A-number.",
					Priority:    types.PriorityHigh,
					Links:       links(linkEOIRStatus),
				})
			} else {
				desc := fmt.Sprintf("Your hearing is on %s.", f.NextHearingDate)
				if f.CourtID != "" {
					desc = fmt.Sprintf("Your hearing is on %s at %s.", f.NextHearingDate, f.CourtID)
				}
				steps = append(steps, types.Step{
					ID:             StepID(id, "attend-hearing"),
					Title:          "Attend your court hearing",
					Description:    desc + " Arrive early. If you cannot attend, contact the court before the date.",
					Kind:           types.KindHearing,
					DueDate:        f.NextHearingDate,
					Priority:       types.PriorityCritical,
					IsEditableDate: true,
					Links:          links(linkEOIRStatus),
				})
			}
			if !f.Filed() {
				deadline := deadlines.OneYearDeadline(f)
				steps = append(steps, types.Step{
					ID:          StepID(id, "file-application"),
					Title:       "File your asylum application with the court",
					Description: "In court, Form I-589 is filed with the immigration judge, not USCIS.",
					Kind:        types.KindFilingDeadline,
					DueDate:     deadline,
					Priority:    types.PriorityCritical,
					Links:       links(linkI589),
				})
			}
			steps = append(steps,
				types.Step{
					ID:          StepID(id, "change-address"),
					Title:       "Report any change of address within 5 days",
					Description: "The court sends hearing notices only to the address on file.",
					Priority:    types.PriorityHigh,
					Links:       links(linkEOIR33),
				},
				types.Step{
					ID:          StepID(id, "check-case-status"),
					Title:       "Check your court case status regularly",
					Description: "Hearings can be rescheduled without much notice.",
					Priority:    types.PriorityMedium,
					Links:       links(linkEOIRStatus),
				},
			)
			return steps
		},
	}
}

func findAttorney() Bundle {
	id := BundleFindAttorney
	return Bundle{
		ID:          id,
		Name:        "Find Legal Help",
		Description: "Having a lawyer greatly improves the chance of success.",
		Priority:    1,
		Trigger: func(in Input) bool {
			return !in.Facts.HasAttorney
		},
		Generate: func(in Input) []types.Step {
			priority := types.PriorityHigh
			if in.Facts.InCourt() {
				priority = types.PriorityCritical
			}
			return []types.Step{
				{
					ID:          StepID(id, "contact-legal-aid"),
					Title:       "Contact free or low-cost legal services",
					Description: "Nonprofits and law school clinics often represent asylum seekers for free.",
					Priority:    priority,
					Links:       links(linkProBono, linkDirectory),
				},
				{
					ID:          StepID(id, "prepare-consultation"),
					Title:       "Prepare for your legal consultation",
					Description: "Bring your documents, any notices you received, and a timeline of events.",
					Priority:    types.PriorityMedium,
				},
			}
		},
	}
}

func missedHearing() Bundle {
	id := BundleMissedHearing
	return Bundle{
		ID:          id,
		Name:        "Missed Hearing",
		Description: "A missed hearing usually results in an order of removal in absentia.",
		Priority:    0,
		Trigger: func(in Input) bool {
			return in.Facts.MissedHearing
		},
		Generate: func(in Input) []types.Step {
			f := in.Facts
			motion := types.Step{
				ID:             StepID(id, "motion-to-reopen"),
				Title:          "File a motion to reopen",
				Description:    "A motion based on exceptional circumstances must be filed within 180 days of the removal order.",
				Kind:           types.KindFilingDeadline,
				Priority:       types.PriorityCritical,
				IsEditableDate: true,
				Links:          links(linkProBono),
			}
			if !f.DecisionDate.IsZero() {
				motion.DueDate = f.DecisionDate.AddDays(180)
			}
			return []types.Step{
				motion,
				{
					ID:          StepID(id, "gather-proof"),
					Title:       "Gather proof of why you missed the hearing",
					Description: "Hospital records, proof you never received the notice, or similar evidence.",
					Priority:    types.PriorityHigh,
				},
			}
		},
	}
}

func appeal() Bundle {
	id := BundleAppeal
	fileAppeal := StepID(id, "file-appeal")
	return Bundle{
		ID:          id,
		Name:        "Appeal to the BIA",
		Description: "An immigration judge's denial can be appealed to the Board of Immigration Appeals within 30 days.",
		Priority:    0,
		Trigger: func(in Input) bool {
			f := in.Facts
			return f.Outcome == types.OutcomeDenied && (f.InCourt() || f.AppealNeeded)
		},
		Generate: func(in Input) []types.Step {
			f := in.Facts
			file := types.Step{
				ID:          fileAppeal,
				Title:       "File your appeal with the BIA",
				Description: "Form EOIR-26 must be received by the Board within 30 days of the judge's decision.",
				Kind:        types.KindFilingDeadline,
				Priority:    types.PriorityCritical,
				Links:       links(linkEOIR26),
			}
			if !f.DecisionDate.IsZero() {
				file.DueDate = f.DecisionDate.AddDays(30)
			}
			return []types.Step{
				file,
				{
					ID:            StepID(id, "briefing-schedule"),
					Title:         "Watch for the BIA briefing schedule",
					Description:   "The Board will mail a schedule with your brief deadline. Add the date here when it arrives.",
					Priority:      types.PriorityHigh,
					ShowAfterStep: fileAppeal,
				},
				{
					ID:             StepID(id, "file-brief"),
					Title:          "File your appeal brief",
					Description:    "Briefs are usually due 21 days after the schedule is issued.",
					Kind:           types.KindFilingDeadline,
					Priority:       types.PriorityHigh,
					IsEditableDate: true,
					ShowAfterStep:  fileAppeal,
				},
			}
		},
	}
}

func affirmativeDenial() Bundle {
	id := BundleAffirmativeDenial
	return Bundle{
		ID:          id,
		Name:        "Referral to Immigration Court",
		Description: "USCIS did not grant your application. Most cases are referred to immigration court, where you can apply again.",
		Priority:    1,
		Trigger: func(in Input) bool {
			f := in.Facts
			return f.Outcome == types.OutcomeDenied && !f.InCourt() && !f.AppealNeeded
		},
		Generate: func(in Input) []types.Step {
			return []types.Step{
				{
					ID:          StepID(id, "watch-nta"),
					Title:       "Watch for your Notice to Appear",
					Description: "The Notice to Appear starts your court case. Update your forum to court when it arrives.",
					Priority:    types.PriorityHigh,
					Links:       links(linkEOIRStatus),
				},
				{
					ID:          StepID(id, "prepare-defense"),
					Title:       "Prepare to renew your claim in court",
					Description: "The judge decides your case from the beginning. Review why USCIS referred it.",
					Priority:    types.PriorityHigh,
				},
			}
		},
	}
}

func tps() Bundle {
	id := BundleTPS
	return Bundle{
		ID:          id,
		Name:        "Temporary Protected Status",
		Description: "Keep your TPS current by re-registering during each registration period.",
		Priority:    2,
		Trigger: func(in Input) bool {
			f := in.Facts
			return f.HasTPS && !f.TPSExpirationDate.IsZero()
		},
		Generate: func(in Input) []types.Step {
			f := in.Facts
			country := f.TPSCountry
			if country == "" {
				country = "your country"
			}
			return []types.Step{
				{
					ID:             StepID(id, "re-register"),
					Title:          "Re-register for TPS",
					Description:    fmt.Sprintf("TPS for %s expires on %s. Re-register as soon as the registration period opens.", country, f.TPSExpirationDate),
					Kind:           types.KindProtectedStatus,
					DueDate:        f.TPSExpirationDate.AddDays(-60),
					Priority:       types.PriorityHigh,
					IsEditableDate: true,
					Links:          links(linkTPS),
				},
			}
		},
	}
}

func parole() Bundle {
	id := BundleParole
	return Bundle{
		ID:          id,
		Name:        "Parole",
		Description: "Parole is temporary. Plan for what happens when it ends.",
		Priority:    2,
		Trigger: func(in Input) bool {
			f := in.Facts
			return f.HasParole && !f.ParoleExpirationDate.IsZero()
		},
		Generate: func(in Input) []types.Step {
			f := in.Facts
			kind := "parole"
			if f.ParoleType != "" {
				kind = f.ParoleType + " parole"
			}
			return []types.Step{
				{
					ID:          StepID(id, "expiration"),
					Title:       "Plan for the end of your parole",
					Description: fmt.Sprintf("Your %s ends on %s. Without another status you may lose work authorization.", kind, f.ParoleExpirationDate),
					Kind:        types.KindProtectedStatus,
					DueDate:     f.ParoleExpirationDate,
					Priority:    types.PriorityHigh,
				},
				{
					ID:          StepID(id, "re-parole"),
					Title:       "Ask about re-parole",
					Description: "Some parole programs allow a new period of parole on Form I-131.",
					Priority:    types.PriorityMedium,
					Links:       links(linkI131),
				},
			}
		},
	}
}

func asylumGranted() Bundle {
	id := BundleAsylumGranted
	return Bundle{
		ID:          id,
		Name:        "After Asylum Is Granted",
		Description: "Next steps as an asylee: documents, family, and permanent residence.",
		Priority:    1,
		Trigger: func(in Input) bool {
			return in.Facts.Outcome == types.OutcomeGranted
		},
		Generate: func(in Input) []types.Step {
			f := in.Facts
			greenCard := types.Step{
				ID:          StepID(id, "apply-green-card"),
				Title:       "Apply for a green card",
				Description: "Asylees can apply for permanent residence one year after the grant.",
				Priority:    types.PriorityHigh,
				Links:       links(linkI485),
			}
			family := types.Step{
				ID:          StepID(id, "petition-family"),
				Title:       "Petition for your spouse and children",
				Description: "Form I-730 must be filed within two years of your grant.",
				Kind:        types.KindFilingDeadline,
				Priority:    types.PriorityHigh,
				Links:       links(linkI730),
			}
			if !f.DecisionDate.IsZero() {
				greenCard.DueDate = f.DecisionDate.AddDate(1, 0, 0)
				family.DueDate = f.DecisionDate.AddDate(2, 0, 0)
			}
			return []types.Step{
				{
					ID:          StepID(id, "social-security"),
					Title:       "Get an unrestricted Social Security card",
					Description: "Bring your grant approval to a Social Security office.",
					Priority:    types.PriorityMedium,
					Links:       links(linkSSA),
				},
				family,
				greenCard,
				{
					ID:          StepID(id, "travel-document"),
					Title:       "Get a refugee travel document before traveling",
					Description: "Do not travel on your home country's passport.",
					Priority:    types.PriorityMedium,
					Links:       links(linkI131),
				},
			}
		},
	}
}
