// Command mcp-demo runs the MCP demo server over stdio and/or HTTP.
package main

func main() {
	Execute()
}
