package clinicaltrials

import (
	"strings"

	"github.com/custodia-labs/trials-mcp/internal/core/domain"
)

// maxLocations caps the sites copied into a TrialRecord; large studies list thousands.
const maxLocations = 10

// studiesResponse is the /studies list payload.
type studiesResponse struct {
	Studies       []study `json:"studies"`
	TotalCount    int     `json:"totalCount"`
	NextPageToken string  `json:"nextPageToken"`
}

// study mirrors the subset of the v2 study document this adapter reads.
type study struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID         string `json:"nctId"`
			BriefTitle    string `json:"briefTitle"`
			OfficialTitle string `json:"officialTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus   string `json:"overallStatus"`
			StartDateStruct struct {
				Date string `json:"date"`
			} `json:"startDateStruct"`
		} `json:"statusModule"`
		SponsorCollaboratorsModule struct {
			LeadSponsor struct {
				Name string `json:"name"`
			} `json:"leadSponsor"`
		} `json:"sponsorCollaboratorsModule"`
		DescriptionModule struct {
			BriefSummary string `json:"briefSummary"`
		} `json:"descriptionModule"`
		ConditionsModule struct {
			Conditions []string `json:"conditions"`
		} `json:"conditionsModule"`
		DesignModule struct {
			StudyType      string   `json:"studyType"`
			Phases         []string `json:"phases"`
			EnrollmentInfo struct {
				Count int `json:"count"`
			} `json:"enrollmentInfo"`
		} `json:"designModule"`
		ContactsLocationsModule struct {
			Locations []struct {
				Facility string `json:"facility"`
				City     string `json:"city"`
				State    string `json:"state"`
				Country  string `json:"country"`
			} `json:"locations"`
		} `json:"contactsLocationsModule"`
	} `json:"protocolSection"`
}

// record projects the wire document onto the domain model.
func (s *study) record() domain.TrialRecord {
	p := &s.ProtocolSection

	rec := domain.TrialRecord{
		NCTID:         strings.TrimSpace(p.IdentificationModule.NCTID),
		Title:         p.IdentificationModule.BriefTitle,
		OfficialTitle: p.IdentificationModule.OfficialTitle,
		Status:        domain.TrialStatus(p.StatusModule.OverallStatus),
		Enrollment:    p.DesignModule.EnrollmentInfo.Count,
		Summary:       strings.TrimSpace(p.DescriptionModule.BriefSummary),
		Conditions:    p.ConditionsModule.Conditions,
		Sponsor:       p.SponsorCollaboratorsModule.LeadSponsor.Name,
		StudyType:     p.DesignModule.StudyType,
		StartDate:     p.StatusModule.StartDateStruct.Date,
	}
	if rec.Title == "" {
		rec.Title = rec.OfficialTitle
	}

	for _, ph := range p.DesignModule.Phases {
		rec.Phases = append(rec.Phases, domain.Phase(ph))
	}

	for i, loc := range p.ContactsLocationsModule.Locations {
		if i == maxLocations {
			break
		}
		rec.Locations = append(rec.Locations, domain.TrialLocation{
			Facility: loc.Facility,
			City:     loc.City,
			State:    loc.State,
			Country:  loc.Country,
		})
	}

	return rec
}
