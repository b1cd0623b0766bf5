// Package openapi generates an OpenAPI 3.x document from the routers
// mounted by an autorouter.AutoRouter.
//
// The document is a plain map tree (Document) so that fragments attached
// with router.Meta and Router.SetMeta can be merged into it verbatim.
//
// See: https://spec.openapis.org/oas/v3.0.0
//
// # Generator
//
//	ar := autorouter.New(discovery.Config{Dir: "routes"})
//	gen := openapi.NewGenerator(ar, map[string]any{"User": User{}}, openapi.Document{
//	    "info": map[string]any{"title": "My API", "version": "2.0.0"},
//	}, openapi.Config{})
//
//	doc, err := gen.Generate(ctx)
//
// For every mounted router and every route in its table the generator
// writes one operation per method under "/" + mount path + pattern:
//
//	{
//	  "description": "No description specified.",
//	  "responses": {"default": {"description": "No responses were specified."}},
//	  "tags": ["<mount path>"]
//	}
//
// Colon parameters are rewritten to OpenAPI templates ("/widgets/:id" becomes
// "/widgets/{id}") unless Config.DisableTemplateReformat is set.
//
// # Merge Order
//
// All merges are shallow: a key present in the later source replaces the
// earlier value wholesale. From lowest to highest precedence:
//
//  1. generated defaults
//  2. handler fragments (router.Meta), later links in a chain win
//  3. router fragments (Router.SetMeta), applied to the path items the
//     router introduced
//  4. the override document passed to NewGenerator
//
// Named schemas are converted by Config.Converter (KinConverter by default)
// into components.schemas, replacing any previous content.
//
// # Serving
//
// Handle registers JSON, YAML and interactive docs endpoints on a router:
//
//	gen.Handle(root, "/docs", nil)
//	// /docs/              -> Swagger UI
//	// /docs/schema.json   -> JSON document
//	// /docs/schema.yaml   -> YAML document
package openapi
