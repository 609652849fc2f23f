package protocol

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "protocol")
