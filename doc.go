// Package mpschema compiles schema sources into a resolved, validated model
// that code generator plugins consume.
//
// A schema source declares one versioned package:
//
//	version:1
//	import "shared"
//
//	type User {
//		id:string 0
//		nickname?:string 1
//		role:shared.Role 2 = shared.Role.member
//		tags:list(string) 3 = ["new"] @(["obsolete": false])
//	}
//
// Design policy:
//   - Keep only public APIs in the root package; put the scanner, grammar,
//     literal parser and compiler passes under internal/.
//   - The resolved model lives in model/, diagnostics in diag/, encoders in
//     wire/, the plugin runner in plugin/ and the CLI under cmd/mpschema.
//
// Typical usage:
//
//	pkgs, err := mpschema.Compile(ctx, "./schemas", mpschema.WithRecursive(true))
//	if iss, ok := mpschema.AsIssue(err); ok {
//		fmt.Println(iss.Location, iss.Code, iss.Message)
//	}
package mpschema
