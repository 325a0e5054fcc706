// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

/*
Package obs implements the obs-websocket v5 client used by the daemon and
the one-shot commands.

Only request/response traffic is used: the client identifies with an empty
event subscription mask and polls. Errors fall into three classes:

  - *ConnectionError: dialing or the Hello/Identify handshake failed.
  - *RequestError: OBS answered a request with a failed status. The
    session stays usable.
  - errors wrapping ErrTransport: the websocket failed or timed out. The
    session closes itself; check with IsTransport.

Usage:

	c, err := obs.Connect(ctx, obs.Options{Host: "localhost", Port: 4455, Password: pw})
	if err != nil {
	    return err
	}
	defer c.Close()

	status, err := c.GetRecordStatus(ctx)
*/
package obs
