package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"login",
			"password_hash",
			"role",
			"name",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"login": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},
			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"visitor", "worker", "admin"},
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9][0-9]{1,14}$`,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
