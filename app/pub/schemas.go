package pub

const (
	issuedActionSchema = `
		{
			"type": "record",
			"name": "IssuedAction",
			"namespace": "app.picassol.model.avro",
			"fields": [
				{ "name": "kind", "type": "string" },
				{ "name": "requester", "type": "string" },
				{ "name": "address", "type": "string" },
				{ "name": "x", "type": "int" },
				{ "name": "y", "type": "int" },
				{ "name": "r", "type": "int" },
				{ "name": "g", "type": "int" },
				{ "name": "b", "type": "int" },
				{ "name": "timestamp", "type": "long" }
			]
		}
	`
)
