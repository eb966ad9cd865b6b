package domain

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "inprogress"
	RequestStatusDone       RequestStatus = "done"
	RequestStatusCanceled   RequestStatus = "canceled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusDone, RequestStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves this status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusDone || s == RequestStatusCanceled
}

// DonationRequest is a blood need progressing through
// pending → inprogress → {done, canceled}. DonorName/DonorEmail are set
// exactly when the request passes through inprogress and are never cleared
// by a later transition.
type DonationRequest struct {
	ID                int64         `json:"id"`
	RequesterName     string        `json:"requesterName"`
	RequesterEmail    string        `json:"requesterEmail"`
	RecipientName     string        `json:"recipientName"`
	BloodGroup        string        `json:"bloodGroup"`
	RecipientDistrict string        `json:"recipientDistrict"`
	RecipientUpazila  string        `json:"recipientUpazila"`
	HospitalName      string        `json:"hospitalName"`
	FullAddress       string        `json:"fullAddress"`
	DonationDate      string        `json:"donationDate"`
	DonationTime      string        `json:"donationTime"`
	RequestMessage    string        `json:"requestMessage"`
	Status            RequestStatus `json:"status"`
	DonorName         string        `json:"donorName,omitempty"`
	DonorEmail        string        `json:"donorEmail,omitempty"`
	CreatedOn         string        `json:"createdOn"`
	UpdatedOn         string        `json:"updatedOn"`
}

// ResolveOutcome is the closed set of statuses a donor or requester may move
// an in-progress request to.
func ResolveOutcome(s RequestStatus) bool {
	return s == RequestStatusDone || s == RequestStatusCanceled
}
