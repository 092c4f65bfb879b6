package validators

import "go.mongodb.org/mongo-driver/bson"

var hhmm = bson.M{
	"bsonType": "string",
	"pattern":  `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
}

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"open_from",
			"open_until",
			"price_per_slot_hour",
			"status",
			"slots_total",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"location": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"open_from":  hhmm,
			"open_until": hhmm,
			"price_per_slot_hour": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"open", "maintenance", "closed"},
			},
			"slots_total": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1000,
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var AttractionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"open_from",
			"open_until",
			"capacity",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"open_from":  hhmm,
			"open_until": hhmm,
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var EventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"start_time",
			"end_time",
			"capacity",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 150,
			},
			"start_time": bson.M{
				"bsonType": "date",
			},
			"end_time": bson.M{
				"bsonType": "date",
			},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
