package authz

const RoleAnonymous = "anonymous"

const (
	ActionRead  = "read"
	ActionAdmin = "admin"
)

// Objects name the console areas guarded by config/access/policy.csv.
const (
	ObjectFieldDefinitions = "console.field-definitions"
	ObjectPersonnel        = "console.personnel"
	ObjectPermissions      = "console.permissions"
	ObjectDemands          = "console.demands"
	ObjectReleases         = "console.releases"
)

// Requirement is the object and action a route needs.
type Requirement struct {
	Object string
	Action string
}

func Read(object string) Requirement { return Requirement{Object: object, Action: ActionRead} }

func Admin(object string) Requirement { return Requirement{Object: object, Action: ActionAdmin} }
