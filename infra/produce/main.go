package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	PhotoService *PhotoEventService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	photoService := InitPhotoEventService(channel)
	if photoService == nil {
		panic("Failed to initialize Photo event service")
	}

	produceInstance = &Produce{
		PhotoService: photoService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
