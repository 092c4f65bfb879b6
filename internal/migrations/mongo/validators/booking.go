package validators

import "go.mongodb.org/mongo-driver/bson"

var objectIDString = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

var bookingStatus = bson.M{
	"bsonType": "string",
	"enum":     []string{"confirmed", "cancelled", "completed"},
}

var RoomBookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"room_id",
			"slot_number",
			"start_time",
			"end_time",
			"price",
			"people_count",
			"status",
			"created_by",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"user_id":    objectIDString,
			"room_id":    objectIDString,
			"created_by": objectIDString,
			"slot_number": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"start_time": bson.M{
				"bsonType": "date",
			},
			"end_time": bson.M{
				"bsonType": "date",
			},
			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"people_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  1000,
			},
			"status": bookingStatus,
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var EventBookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"event_id",
			"price",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"user_id":  objectIDString,
			"event_id": objectIDString,
			"price": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"status": bookingStatus,
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
