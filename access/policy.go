package access

// Operation names a gated entry point of the service.
type Operation string

const (
	OpInitialize         Operation = "initialize_access_control"
	OpAssignRole         Operation = "assign_role"
	OpGetCallerRole      Operation = "get_caller_role"
	OpIsCallerAdmin      Operation = "is_caller_admin"
	OpSaveProfile        Operation = "save_profile"
	OpGetProfile         Operation = "get_profile"
	OpGetOtherProfile    Operation = "get_other_profile"
	OpPutJobProfile      Operation = "put_job_profile"
	OpPutMatrimonial     Operation = "put_matrimonial_profile"
	OpCreateListing      Operation = "create_listing"
	OpUpdateListing      Operation = "update_listing"
	OpDeleteListing      Operation = "delete_listing"
	OpListListings       Operation = "list_listings"
	OpGetListing         Operation = "get_listing"
	OpApply              Operation = "apply_for_job"
	OpCallerApplications Operation = "caller_applications"
	OpApplicantApps      Operation = "applications_by_applicant"
	OpJobApplications    Operation = "applications_by_job"
	OpUpdateAppStatus    Operation = "update_application_status"
	OpSendInterest       Operation = "send_interest"
	OpAcceptInterest     Operation = "accept_interest"
	OpRejectInterest     Operation = "reject_interest"
	OpListInterests      Operation = "list_interests"
	OpListMatches        Operation = "list_matches"
	OpSaveMatch          Operation = "save_match"
	OpSendMessage        Operation = "send_message"
	OpReadMessages       Operation = "read_messages"
	OpRecommend          Operation = "recommend"
	OpListUsers          Operation = "list_users"
	OpDeleteUser         Operation = "delete_user"
)

// policy maps every operation to the minimum role allowed to invoke it.
// Operations missing from the table are denied.
var policy = map[Operation]Role{
	OpInitialize:    RoleGuest,
	OpGetCallerRole: RoleGuest,
	OpIsCallerAdmin: RoleGuest,
	OpListListings:  RoleGuest,
	OpGetListing:    RoleGuest,

	OpSaveProfile:        RoleUser,
	OpGetProfile:         RoleUser,
	OpGetOtherProfile:    RoleUser,
	OpPutJobProfile:      RoleUser,
	OpPutMatrimonial:     RoleUser,
	OpApply:              RoleUser,
	OpCallerApplications: RoleUser,
	OpApplicantApps:      RoleUser,
	OpSendInterest:       RoleUser,
	OpAcceptInterest:     RoleUser,
	OpRejectInterest:     RoleUser,
	OpListInterests:      RoleUser,
	OpListMatches:        RoleUser,
	OpSaveMatch:          RoleUser,
	OpSendMessage:        RoleUser,
	OpReadMessages:       RoleUser,
	OpRecommend:          RoleUser,

	OpAssignRole:      RoleAdmin,
	OpCreateListing:   RoleAdmin,
	OpUpdateListing:   RoleAdmin,
	OpDeleteListing:   RoleAdmin,
	OpListUsers:       RoleAdmin,
	OpDeleteUser:      RoleAdmin,
	OpJobApplications: RoleAdmin,
	OpUpdateAppStatus: RoleAdmin,
}

// Required returns the minimum role for op and whether op is known.
func Required(op Operation) (Role, bool) {
	role, ok := policy[op]
	return role, ok
}
