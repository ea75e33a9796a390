// Package schema builds and validates the survey metamodel.
//
// A Model indexes a tree of domain.NodeDefinition by id and implements
// ports.Metamodel. Loaders (YAML file, loam folder) produce a root definition
// and hand it to New, which validates it before indexing:
//
//	root := &domain.NodeDefinition{ID: 1, Name: "plot", Kind: domain.KindEntity, Children: ...}
//	model, err := schema.New(root)
//	if err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle validation errors
//	    }
//	}
//
// Validation collects every problem instead of stopping at the first one.
package schema
