package main

import (
	"log"
	"time"

	"kt0915/display"
	"kt0915/radio"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/api"
	"gobot.io/x/gobot/drivers/gpio"
	"gobot.io/x/gobot/platforms/raspi"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	adaptor := raspi.NewAdaptor()

	band := radio.BandFM
	radioConfig := radio.KT0915Config{
		ResetPin:       "7",
		Crystal:        radio.OSCILLATOR_32KHZ,
		CrystalTimeout: 2 * time.Second,
		Band:           &band,
		Log:            log.Printf,
	}
	rdio, err := radio.NewKT0915Driver(adaptor, radioConfig)
	if err != nil {
		log.Fatalln(err)
	}

	lcd, err := display.NewLCD1602Driver(adaptor)
	if err != nil {
		log.Fatalln(err)
	}

	up := gpio.NewButtonDriver(adaptor, "16")
	down := gpio.NewButtonDriver(adaptor, "18")

	work := func() {
		id, err := rdio.DeviceID()
		if err != nil {
			log.Fatalln(err)
		}
		if err = lcd.ShowLines("KT0915 "+id, "starting"); err != nil {
			log.Fatalln(err)
		}

		err = up.On(gpio.ButtonPush, func(interface{}) {
			if err := rdio.FrequencyUp(); err != nil {
				log.Println(err)
			}
		})
		if err != nil {
			log.Fatalln(err)
		}
		err = down.On(gpio.ButtonPush, func(interface{}) {
			if err := rdio.FrequencyDown(); err != nil {
				log.Println(err)
			}
		})
		if err != nil {
			log.Fatalln(err)
		}

		gobot.Every(500*time.Millisecond, func() {
			note := time.Now().Format("15:04:05")
			if rdio.DialMode() {
				note += " dial"
			}
			if err := lcd.ShowStation(rdio.Mode(), rdio.TunedFrequency(), note); err != nil {
				log.Println(err)
			}
		})
	}

	robot := gobot.NewRobot("KT0915 receiver",
		[]gobot.Connection{adaptor},
		[]gobot.Device{rdio, lcd, up, down},
		work,
	)

	// SetFrequency, FrequencyUp and friends are served under
	// /api/robots/KT0915 receiver/devices/<driver name>/commands/
	master := gobot.NewMaster()
	api.NewAPI(master).Start()
	master.AddRobot(robot)

	if err = master.Start(); err != nil {
		log.Fatalln(err)
	}
}
