package domain

import "time"

type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeUnknown    JobType = "unknown"
)

type RemoteType string

const (
	RemoteTypeOnsite  RemoteType = "onsite"
	RemoteTypeRemote  RemoteType = "remote"
	RemoteTypeHybrid  RemoteType = "hybrid"
	RemoteTypeUnknown RemoteType = "unknown"
)

// JobListing is one normalized posting as produced by a source adapter.
// Values are immutable after construction; identity is the canonical URL,
// not an assigned key.
type JobListing struct {
	Title       string
	Company     string
	Location    string
	Description string
	URL         string

	// Salary range in USD/year. Nil means the posting did not state it.
	SalaryMin *int
	SalaryMax *int

	JobType    JobType
	RemoteType RemoteType

	Source string
	Skills []string

	PostedAt time.Time

	// AlternateSources records sources whose copy of this posting was folded
	// into this one during dedup.
	AlternateSources []string
}

func (j JobListing) HasSalary() bool { return j.SalaryMin != nil || j.SalaryMax != nil }

func (j JobListing) JobTypeKnown() bool { return j.JobType != "" && j.JobType != JobTypeUnknown }

func (j JobListing) RemoteTypeKnown() bool {
	return j.RemoteType != "" && j.RemoteType != RemoteTypeUnknown
}
