package io_test

import (
	"fmt"

	"github.com/matzehuels/mapwright/pkg/engine"
	"github.com/matzehuels/mapwright/pkg/graph"
	mwio "github.com/matzehuels/mapwright/pkg/io"
)

func ExampleGeneratePlantUML() {
	ids := []string{"canvas", "api", "db", "e1"}
	e := engine.New(engine.WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))
	api := e.CreateNode("API", 0, 0, nil)
	db := e.CreateNode("Database", 200, 0, nil)
	if _, err := e.CreateEdge(api.ID, db.ID, graph.EdgeOptions{Label: "reads"}); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Print(mwio.GeneratePlantUML(e.Snapshot()))
	// Output:
	// @startuml
	// node "API" as api
	// node "Database" as db
	// api --> db : reads
	// @enduml
}

func ExampleParseFormat() {
	for _, name := range []string{"md", ".puml", "gv"} {
		f, err := mwio.ParseFormat(name)
		fmt.Println(f, err)
	}
	// Output:
	// markdown <nil>
	// plantuml <nil>
	// dot <nil>
}
