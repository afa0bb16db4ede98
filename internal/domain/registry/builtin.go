package registry

import "github.com/GriffinCanCode/erpshell/internal/shared/types"

// HomeKey is the component key of the permanent Home tab.
const HomeKey = "home"

// Builtins are the modules shipped with the shell.
var Builtins = []types.ModuleDescriptor{
	{Key: HomeKey, Title: "Home", Icon: "Home", Category: "general", Order: 0,
		Description: "Module tiles and recent apps"},
	{Key: "company", Title: "Company", Icon: "Building2", Category: "settings", Order: 10,
		Endpoint: "/company", Description: "Company registration data and logo"},
	{Key: "ranges", Title: "Ranges", Icon: "Layers", Category: "stock", Order: 10,
		Endpoint: "/ranges", Fields: []string{"code", "description"}},
	{Key: "material-groups", Title: "Material Groups", Icon: "FolderTree", Category: "stock", Order: 20,
		Endpoint: "/material-groups", Fields: []string{"code", "description", "rangeId"}},
	{Key: "materials", Title: "Materials", Icon: "Box", Category: "stock", Order: 30,
		Endpoint: "/materials", Fields: []string{"code", "description", "unit", "groupId", "price"},
		Tags: []string{"products", "items"}},
	{Key: "suppliers", Title: "Suppliers", Icon: "Truck", Category: "purchasing", Order: 10,
		Endpoint: "/suppliers", Fields: []string{"name", "document", "email", "phone"},
		Tags: []string{"vendors"}},
	{Key: "deposits", Title: "Deposits", Icon: "Warehouse", Category: "warehouse", Order: 10,
		Endpoint: "/deposits", Fields: []string{"code", "description", "active"}},
	{Key: "positions", Title: "Positions", Icon: "Grid3x3", Category: "warehouse", Order: 20,
		Endpoint: "/positions", Fields: []string{"depositId", "code", "capacity"}},
	{Key: "users", Title: "Users", Icon: "Users", Category: "settings", Order: 20,
		Endpoint: "/users", Fields: []string{"login", "name", "email", "role"}, RequiredRole: "admin"},
	{Key: "logs", Title: "Logs", Icon: "ScrollText", Category: "settings", Order: 30,
		Endpoint: "/logs", RequiredRole: "admin", Tags: []string{"audit"}},
}

// RegisterBuiltins adds the shipped modules to catalog.
func RegisterBuiltins(catalog *Catalog) error {
	for _, d := range Builtins {
		if err := catalog.Register(d); err != nil {
			return err
		}
	}
	return nil
}
