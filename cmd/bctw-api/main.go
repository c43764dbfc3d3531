// Command bctw-api serves the BC Telemetry Warehouse REST API.
package main

func main() {
	Execute()
}
