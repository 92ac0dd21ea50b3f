// Command mpschema compiles schema packages and drives code generator
// plugins.
package main

func main() {
	Execute()
}
